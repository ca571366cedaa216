package hierarchy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCodeNotFound is returned by queries that cannot proceed without the
// requested code existing in the tree.
var ErrCodeNotFound = errors.New("code not found")

// SubtreeByPrecision resolves an ARC-style code of arbitrary digit precision
// by descending one digit per level: the category digit first, then each
// further digit appended to a running dotted accumulator. Returns nil when
// any level along the path is absent or the code has no leading digit; a bad
// query is an empty result, not an error.
func (t *Tree) SubtreeByPrecision(code string) *Node {
	var digits []byte
	for _, r := range strings.TrimSpace(code) {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
	}
	if len(digits) == 0 {
		return nil
	}

	category := string(digits[0])
	current, ok := t.Nodes[category]
	if !ok {
		return nil
	}
	acc := category + "."
	for _, d := range digits[1:] {
		acc += string(d)
		next, ok := current.Children[acc]
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// AncestorPath returns the chain of nodes from the top-level sector down to
// the given code, the root excluded. Nil when the code is unknown.
func (t *Tree) AncestorPath(code string) []*Node {
	node := t.Node(code)
	if node == nil {
		return nil
	}
	return stripRoot(node.Path())
}

// ChildrenOf returns the direct children of a code, sorted lexicographically
// by code. Empty for unknown codes and leaves.
func (t *Tree) ChildrenOf(code string) []*Node {
	node := t.Node(code)
	if node == nil {
		return nil
	}
	return sortedChildren(node)
}

// Descendants returns every node below the given code. maxDepth limits the
// traversal: 0 returns direct children only, negative values impose no limit.
func (t *Tree) Descendants(code string, maxDepth int) []*Node {
	node := t.Node(code)
	if node == nil {
		return nil
	}
	var out []*Node
	collectDescendants(node, &out, maxDepth, 0)
	return out
}

func collectDescendants(n *Node, out *[]*Node, maxDepth, depth int) {
	for _, child := range sortedChildren(n) {
		*out = append(*out, child)
		if maxDepth < 0 || depth < maxDepth {
			collectDescendants(child, out, maxDepth, depth+1)
		}
	}
}

// Sectors returns the top-level entries of the tree sorted by code.
func (t *Tree) Sectors() []*Node {
	return sortedChildren(t.Root)
}

// Search finds nodes matching a query against codes and labels. Results are
// ranked: an exact (or alias) code match first, then code-prefix matches
// sorted by code length ascending and capped at half the budget, then label
// substring matches; duplicates removed, output truncated to maxResults.
func (t *Tree) Search(query string, maxResults int) []*Node {
	if maxResults <= 0 {
		maxResults = 100
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	seen := make(map[string]bool)
	var results []*Node
	add := func(n *Node) {
		if n != nil && !seen[n.Code] && len(results) < maxResults {
			seen[n.Code] = true
			results = append(results, n)
		}
	}

	add(t.Node(query))

	var prefixMatches []*Node
	for code, node := range t.Nodes {
		if strings.HasPrefix(code, query) {
			prefixMatches = append(prefixMatches, node)
		}
	}
	sort.Slice(prefixMatches, func(i, j int) bool {
		a, b := prefixMatches[i], prefixMatches[j]
		if len(a.Code) != len(b.Code) {
			return len(a.Code) < len(b.Code)
		}
		return a.Code < b.Code
	})
	budget := maxResults / 2
	for i, n := range prefixMatches {
		if i >= budget {
			break
		}
		add(n)
	}

	if len(results) < maxResults {
		var labelMatches []*Node
		for _, node := range t.Nodes {
			if node.HasLabel && strings.Contains(strings.ToLower(node.Label), query) {
				labelMatches = append(labelMatches, node)
			}
		}
		sort.Slice(labelMatches, func(i, j int) bool { return labelMatches[i].Code < labelMatches[j].Code })
		for _, n := range labelMatches {
			add(n)
		}
	}
	return results
}

// Comparison describes the common ancestry and divergence of two codes.
type Comparison struct {
	CommonAncestor *Node
	CommonPath     []*Node
	UniqueA        []*Node
	UniqueB        []*Node
	// Distance is the combined length of the two unique suffix paths.
	Distance int
}

// Compare finds the shared ancestor path of two codes and each code's unique
// suffix below it. Fails when either code is absent; two codes in different
// top-level sectors compare with a nil common ancestor.
func (t *Tree) Compare(codeA, codeB string) (*Comparison, error) {
	nodeA := t.Node(codeA)
	nodeB := t.Node(codeB)
	if nodeA == nil || nodeB == nil {
		var missing []string
		if nodeA == nil {
			missing = append(missing, codeA)
		}
		if nodeB == nil {
			missing = append(missing, codeB)
		}
		return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, strings.Join(missing, ", "))
	}

	pathA := stripRoot(nodeA.Path())
	pathB := stripRoot(nodeB.Path())

	var common []*Node
	for i := 0; i < len(pathA) && i < len(pathB); i++ {
		if pathA[i].Code != pathB[i].Code {
			break
		}
		common = append(common, pathA[i])
	}

	cmp := &Comparison{
		CommonPath: common,
		UniqueA:    pathA[len(common):],
		UniqueB:    pathB[len(common):],
	}
	if len(common) > 0 {
		cmp.CommonAncestor = common[len(common)-1]
	}
	cmp.Distance = len(cmp.UniqueA) + len(cmp.UniqueB)
	return cmp, nil
}

// FlattenCodeDescriptions walks a subtree and collects every labeled node
// into a flat code→label map. Synthesized intermediates without a label are
// passed through but not collected.
func FlattenCodeDescriptions(n *Node) CodeMap {
	out := make(CodeMap)
	flattenInto(n, out)
	return out
}

// Flatten collects the labeled nodes of the whole tree.
func (t *Tree) Flatten() CodeMap {
	out := make(CodeMap)
	for _, child := range t.Root.Children {
		flattenInto(child, out)
	}
	return out
}

func flattenInto(n *Node, out CodeMap) {
	if n == nil {
		return
	}
	if n.HasLabel && n.Code != RootCode {
		out[n.Code] = n.Label
	}
	for _, child := range n.Children {
		flattenInto(child, out)
	}
}

func stripRoot(path []*Node) []*Node {
	out := path[:0:0]
	for _, n := range path {
		if !n.IsRoot() {
			out = append(out, n)
		}
	}
	return out
}
