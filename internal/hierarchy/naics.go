package hierarchy

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// naicsRow is one row of the (possibly range-expanded) NAICS table.
type naicsRow struct {
	Code  string
	Title string
	// PartOfRange holds the originating range code for rows generated by
	// range expansion; empty for source rows.
	PartOfRange string
}

// BuildNAICS builds the NAICS tree from a flat (code, title) table. Codes are
// 2-6 digit numeric prefixes; dash-range codes like "44-45" collapse several
// adjacent sectors into one node, and every individual code in the span
// resolves to that node through the alias table.
func BuildNAICS(entries []CodeEntry, log *slog.Logger) *Tree {
	if log == nil {
		log = slog.Default()
	}
	tree := NewTree("North American Industry Classification System")

	rows := expandRangeCodes(entries, log)

	// Shorter codes are ancestors; instantiate them first so parent linking
	// can always find an existing node.
	sort.SliceStable(rows, func(i, j int) bool {
		return digitCount(rows[i].Code) < digitCount(rows[j].Code)
	})

	ordered := make([]*Node, 0, len(rows))
	for _, row := range rows {
		code := CleanCode(row.Code)
		if code == "" || code == "nan" {
			continue
		}
		// Expanded rows exist only to alias back to their range; the range
		// row itself owns the node.
		if row.PartOfRange != "" {
			continue
		}
		if _, dup := tree.Nodes[code]; dup {
			log.Warn("duplicate NAICS code, keeping first", "code", code)
			continue
		}
		node := NewNode(code, row.Title, true)
		tree.Nodes[code] = node
		ordered = append(ordered, node)

		if node.Kind == KindRange {
			start, end, ok := parseRange(code)
			if !ok || end-start <= 0 || end-start >= 100 {
				continue
			}
			for v := start; v <= end; v++ {
				alias := strconv.Itoa(v)
				if alias == code {
					continue
				}
				tree.Aliases[alias] = code
				node.AddAlternateCode(alias)
			}
		}
	}

	for _, node := range ordered {
		linkNAICSParent(tree, node, log)
	}
	return tree
}

// linkNAICSParent attaches node under its parent, found by trying
// progressively shorter prefixes of its code, longest first. Range codes and
// 2-digit sectors sit directly under the root; a code with no resolvable
// ancestor is attached to the root as well, which indicates a gap in the
// source taxonomy.
func linkNAICSParent(tree *Tree, node *Node, log *slog.Logger) {
	code := node.Code
	if node.Kind == KindRange || digitCount(code) <= 2 {
		tree.Root.AddChild(node)
		return
	}
	for i := len(code) - 1; i > 0; i-- {
		prefix := code[:i]
		if parent, ok := tree.Nodes[prefix]; ok {
			parent.AddChild(node)
			return
		}
		if canonical, ok := tree.Aliases[prefix]; ok {
			tree.Nodes[canonical].AddChild(node)
			return
		}
	}
	log.Warn("no parent found for NAICS code, attaching to root", "code", code)
	tree.Root.AddChild(node)
}

// expandRangeCodes generates one extra row per individual code covered by a
// dash-range row. The original range row is kept unmodified.
func expandRangeCodes(entries []CodeEntry, log *slog.Logger) []naicsRow {
	rows := make([]naicsRow, 0, len(entries))
	for _, e := range entries {
		code := strings.TrimSpace(e.Code)
		rows = append(rows, naicsRow{Code: code, Title: e.Label})

		if !strings.Contains(code, "-") {
			continue
		}
		clean := CleanCode(code)
		start, end, ok := parseRange(clean)
		if !ok {
			log.Warn("unparseable NAICS range code", "code", code)
			continue
		}
		span := end - start
		if span <= 0 || span >= 100 {
			log.Warn("NAICS range span out of bounds, not expanding", "code", code, "span", span)
			continue
		}
		for v := start; v <= end; v++ {
			rows = append(rows, naicsRow{
				Code:        strconv.Itoa(v),
				Title:       e.Label,
				PartOfRange: clean,
			})
		}
	}
	return rows
}

// parseRange splits a cleaned dash code into its numeric bounds.
func parseRange(code string) (start, end int, ok bool) {
	left, right, found := strings.Cut(code, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.Atoi(left)
	if err != nil {
		return 0, 0, false
	}
	end, err = strconv.Atoi(right)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// digitCount counts digits in a code, ignoring dashes.
func digitCount(code string) int {
	return len(strings.ReplaceAll(CleanCode(code), "-", ""))
}

// Stats summarizes a built tree for diagnostics.
type Stats struct {
	TotalNodes   int
	TotalAliases int
	RootChildren int
}

// Stats reports node, alias and sector counts.
func (t *Tree) Stats() Stats {
	return Stats{
		TotalNodes:   len(t.Nodes),
		TotalAliases: len(t.Aliases),
		RootChildren: len(t.Root.Children),
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d aliases, %d root children", s.TotalNodes, s.TotalAliases, s.RootChildren)
}
