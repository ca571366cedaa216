package api

import "github.com/iacdata/codetree/internal/hierarchy"

// nodeInfo is the flat JSON shape of one NAICS node.
type nodeInfo struct {
	Code           string   `json:"code"`
	Title          string   `json:"title"`
	IsRange        bool     `json:"is_range"`
	AlternateCodes []string `json:"alternate_codes"`
	HasChildren    bool     `json:"has_children"`
}

func toNodeInfo(n *hierarchy.Node) nodeInfo {
	info := nodeInfo{
		Code:           n.Code,
		Title:          n.Label,
		IsRange:        n.Kind == hierarchy.KindRange,
		AlternateCodes: n.AlternateCodes,
		HasChildren:    len(n.Children) > 0,
	}
	if info.AlternateCodes == nil {
		info.AlternateCodes = []string{}
	}
	return info
}

func toNodeInfos(nodes []*hierarchy.Node) []nodeInfo {
	out := make([]nodeInfo, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toNodeInfo(n))
	}
	return out
}

// arcSubtree is the nested JSON shape of one ARC node, children keyed by code.
type arcSubtree struct {
	Code        string                 `json:"code"`
	Description *string                `json:"description"`
	Children    map[string]*arcSubtree `json:"children"`
}

func toARCSubtree(n *hierarchy.Node) *arcSubtree {
	sub := &arcSubtree{
		Code:     n.Code,
		Children: make(map[string]*arcSubtree, len(n.Children)),
	}
	if n.HasLabel {
		label := n.Label
		sub.Description = &label
	}
	for code, child := range n.Children {
		sub.Children[code] = toARCSubtree(child)
	}
	return sub
}

// comparison is the JSON shape of a two-code comparison.
type comparison struct {
	CommonAncestor *nodeInfo  `json:"common_ancestor"`
	CommonPath     []nodeInfo `json:"common_path"`
	UniqueToCode1  []nodeInfo `json:"unique_to_code1"`
	UniqueToCode2  []nodeInfo `json:"unique_to_code2"`
	Distance       int        `json:"relationship_distance"`
}

func toComparison(cmp *hierarchy.Comparison) comparison {
	out := comparison{
		CommonPath:    toNodeInfos(cmp.CommonPath),
		UniqueToCode1: toNodeInfos(cmp.UniqueA),
		UniqueToCode2: toNodeInfos(cmp.UniqueB),
		Distance:      cmp.Distance,
	}
	if cmp.CommonAncestor != nil {
		info := toNodeInfo(cmp.CommonAncestor)
		out.CommonAncestor = &info
	}
	return out
}
