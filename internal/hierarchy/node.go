// Package hierarchy reconstructs the ARC and NAICS taxonomies from their flat
// code lists. Both code systems encode parent/child structure in the code
// string itself (each ARC digit is one level; NAICS codes are numeric
// prefixes), so the builders here turn a flat code→label table into an
// explicit tree and answer path, subtree and comparison queries over it.
package hierarchy

import (
	"sort"
	"strings"
)

// Kind distinguishes plain codes from NAICS dash-range codes such as "44-45".
type Kind int

const (
	KindPlain Kind = iota
	KindRange
)

// Node is one taxonomy entry. Label may be empty for intermediate nodes that
// were inferred from code structure but never appeared in the source table.
type Node struct {
	Code           string
	Label          string
	HasLabel       bool
	Kind           Kind
	AlternateCodes []string
	Parent         *Node
	Children       map[string]*Node
}

// NewNode creates an unlinked node.
func NewNode(code, label string, hasLabel bool) *Node {
	n := &Node{
		Code:     code,
		Label:    label,
		HasLabel: hasLabel,
		Children: make(map[string]*Node),
	}
	if strings.Contains(code, "-") {
		n.Kind = KindRange
	}
	return n
}

// AddChild links child under n, replacing any previous parent link.
func (n *Node) AddChild(child *Node) {
	n.Children[child.Code] = child
	child.Parent = n
}

// AddAlternateCode records an alias code expanded from a range.
func (n *Node) AddAlternateCode(code string) {
	for _, c := range n.AlternateCodes {
		if c == code {
			return
		}
	}
	n.AlternateCodes = append(n.AlternateCodes, code)
}

// Path returns the chain of nodes from the root down to n, inclusive.
func (n *Node) Path() []*Node {
	if n.Parent == nil {
		return []*Node{n}
	}
	return append(n.Parent.Path(), n)
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.Parent == nil && n.Code == RootCode
}

// RootCode is the code of the synthetic root node.
const RootCode = "ROOT"

// Tree is the arena holding one built taxonomy: every node indexed by its
// cleaned code, a synthetic root above the top-level sectors, and the alias
// table mapping individual codes to the range code that subsumes them.
//
// A Tree is built once and never mutated afterward; concurrent reads are safe
// once the build call has returned.
type Tree struct {
	Root    *Node
	Nodes   map[string]*Node
	Aliases map[string]string
}

// NewTree creates an empty tree with the given root label.
func NewTree(rootLabel string) *Tree {
	root := NewNode(RootCode, rootLabel, rootLabel != "")
	return &Tree{
		Root:    root,
		Nodes:   make(map[string]*Node),
		Aliases: make(map[string]string),
	}
}

// CleanCode strips whitespace and commas from a raw code string. Dashes are
// kept; they are meaningful for range codes.
func CleanCode(code string) string {
	code = strings.TrimSpace(code)
	code = strings.ReplaceAll(code, ",", "")
	return strings.ReplaceAll(code, " ", "")
}

// Node looks a node up by code, resolving range aliases. Returns nil when the
// code is unknown.
func (t *Tree) Node(code string) *Node {
	clean := CleanCode(code)
	if n, ok := t.Nodes[clean]; ok {
		return n
	}
	if canonical, ok := t.Aliases[clean]; ok {
		return t.Nodes[canonical]
	}
	return nil
}

// Len returns the number of nodes in the tree, excluding the root.
func (t *Tree) Len() int {
	return len(t.Nodes)
}

// sortedChildren returns a node's children ordered lexicographically by code.
func sortedChildren(n *Node) []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
