package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// arcSnapshotNode is the on-disk shape of one ARC tree entry.
type arcSnapshotNode struct {
	Code        string                      `json:"code"`
	Description *string                     `json:"description"`
	Children    map[string]*arcSnapshotNode `json:"children"`
}

// arcSnapshot is the ARC snapshot document: the nested hierarchy plus the
// flat code map it was built from.
type arcSnapshot struct {
	Hierarchy map[string]*arcSnapshotNode `json:"hierarchy"`
	Codes     CodeMap                     `json:"codes"`
}

// naicsSnapshotNode is the on-disk shape of the NAICS tree, written root-down
// as a single nested document.
type naicsSnapshotNode struct {
	Code           string                        `json:"code"`
	Title          string                        `json:"title"`
	IsRange        bool                          `json:"is_range"`
	AlternateCodes []string                      `json:"alternate_codes"`
	Children       map[string]*naicsSnapshotNode `json:"children"`
}

// SaveARCSnapshot writes the ARC tree and its flat code map as a JSON
// document with "hierarchy" and "codes" top-level keys.
func SaveARCSnapshot(path string, tree *Tree, codes CodeMap) error {
	snap := arcSnapshot{
		Hierarchy: make(map[string]*arcSnapshotNode, len(tree.Root.Children)),
		Codes:     codes,
	}
	for code, child := range tree.Root.Children {
		snap.Hierarchy[code] = arcNodeToSnapshot(child)
	}
	return writeJSON(path, snap)
}

// LoadARCSnapshot reloads a snapshot written by SaveARCSnapshot.
func LoadARCSnapshot(path string) (*Tree, CodeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read ARC snapshot: %w", err)
	}
	var snap arcSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, nil, fmt.Errorf("decode ARC snapshot: %w", err)
	}

	tree := NewTree("Assessment Recommendation Codes")
	for _, sn := range snap.Hierarchy {
		attachARCSnapshot(tree, tree.Root, sn)
	}
	return tree, snap.Codes, nil
}

func arcNodeToSnapshot(n *Node) *arcSnapshotNode {
	sn := &arcSnapshotNode{
		Code:     n.Code,
		Children: make(map[string]*arcSnapshotNode, len(n.Children)),
	}
	if n.HasLabel {
		label := n.Label
		sn.Description = &label
	}
	for code, child := range n.Children {
		sn.Children[code] = arcNodeToSnapshot(child)
	}
	return sn
}

func attachARCSnapshot(tree *Tree, parent *Node, sn *arcSnapshotNode) {
	label, hasLabel := "", false
	if sn.Description != nil {
		label, hasLabel = *sn.Description, true
	}
	node := NewNode(sn.Code, label, hasLabel)
	tree.Nodes[sn.Code] = node
	parent.AddChild(node)
	for _, child := range sn.Children {
		attachARCSnapshot(tree, node, child)
	}
}

// SaveNAICSSnapshot writes the NAICS tree as a single nested document, root
// included, children keyed by code.
func SaveNAICSSnapshot(path string, tree *Tree) error {
	return writeJSON(path, naicsNodeToSnapshot(tree.Root))
}

// LoadNAICSSnapshot reloads a snapshot written by SaveNAICSSnapshot,
// rebuilding parent links, the node index and the alias table.
func LoadNAICSSnapshot(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read NAICS snapshot: %w", err)
	}
	var root naicsSnapshotNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode NAICS snapshot: %w", err)
	}

	tree := NewTree(root.Title)
	for _, child := range root.Children {
		attachNAICSSnapshot(tree, tree.Root, child)
	}
	return tree, nil
}

func naicsNodeToSnapshot(n *Node) *naicsSnapshotNode {
	sn := &naicsSnapshotNode{
		Code:           n.Code,
		Title:          n.Label,
		IsRange:        n.Kind == KindRange,
		AlternateCodes: n.AlternateCodes,
		Children:       make(map[string]*naicsSnapshotNode, len(n.Children)),
	}
	if sn.AlternateCodes == nil {
		sn.AlternateCodes = []string{}
	}
	for code, child := range n.Children {
		sn.Children[code] = naicsNodeToSnapshot(child)
	}
	return sn
}

func attachNAICSSnapshot(tree *Tree, parent *Node, sn *naicsSnapshotNode) {
	node := NewNode(sn.Code, sn.Title, true)
	for _, alt := range sn.AlternateCodes {
		node.AddAlternateCode(alt)
		tree.Aliases[alt] = sn.Code
	}
	tree.Nodes[sn.Code] = node
	parent.AddChild(node)
	for _, child := range sn.Children {
		attachNAICSSnapshot(tree, node, child)
	}
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
