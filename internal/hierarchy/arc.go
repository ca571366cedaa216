package hierarchy

import (
	"log/slog"
	"strconv"
	"strings"
)

// CodeEntry is one row of a flat code list, in source order. Source order
// matters: when the same code appears twice, the later row's label wins.
type CodeEntry struct {
	Code  string
	Label string
}

// CodeMap is a flat code→label mapping, the leaf data a tree is built from
// and the shape FlattenCodeDescriptions returns.
type CodeMap map[string]string

// BuildARC builds the ARC tree from a flat list of dotted-decimal codes.
// Every digit of a code is one tree level: 4.811 sits under 4.81, which sits
// under 4.8, which sits under 4. Intermediate levels missing from the source
// list are synthesized without a label; a later row for that code fills the
// label in. Rows whose code does not parse as a decimal digit sequence are
// skipped, never fatal.
func BuildARC(entries []CodeEntry, log *slog.Logger) *Tree {
	if log == nil {
		log = slog.Default()
	}
	tree := NewTree("Assessment Recommendation Codes")

	// Secondary label index under normalized numeric form, so a source keyed
	// "4.80" still labels the intermediate node "4.8".
	labels := make(map[string]string, len(entries))
	normLabels := make(map[string]string, len(entries))
	for _, e := range entries {
		labels[strings.TrimSpace(e.Code)] = e.Label
		if norm, ok := normalizeARCCode(e.Code); ok {
			normLabels[norm] = e.Label
		}
	}

	for _, e := range entries {
		code, ok := normalizeARCCode(e.Code)
		if !ok {
			log.Warn("skipping malformed ARC code", "code", e.Code)
			continue
		}
		chain := arcPrefixChain(code)

		parent := tree.Root
		for i, prefix := range chain {
			node := tree.Nodes[prefix]
			last := i == len(chain)-1
			switch {
			case node == nil && last:
				node = NewNode(prefix, e.Label, true)
				tree.Nodes[prefix] = node
				parent.AddChild(node)
			case node == nil:
				label, found := arcLookupLabel(prefix, labels, normLabels)
				node = NewNode(prefix, label, found)
				tree.Nodes[prefix] = node
				parent.AddChild(node)
			case last:
				// The code's own row always wins the label, but children
				// built from longer codes seen earlier are kept.
				node.Label = e.Label
				node.HasLabel = true
			}
			parent = node
		}
	}
	return tree
}

// normalizeARCCode reduces a code to its minimal decimal form: trailing
// fractional zeros stripped, then a bare trailing dot. Reports false for
// anything that is not a digit sequence with at most one dot.
func normalizeARCCode(raw string) (string, bool) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", false
	}
	if strings.Contains(code, ".") {
		code = strings.TrimRight(code, "0")
		code = strings.TrimSuffix(code, ".")
	}
	dots := 0
	for _, r := range code {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return "", false
		}
	}
	if dots > 1 || code == "" || code == "." {
		return "", false
	}
	if strings.HasPrefix(code, ".") {
		return "", false
	}
	return code, true
}

// arcPrefixChain decomposes a normalized code into its ancestor chain, one
// entry per digit: "4.811" → ["4", "4.8", "4.81", "4.811"].
func arcPrefixChain(code string) []string {
	intPart, fracPart, hasFrac := strings.Cut(code, ".")

	chain := make([]string, 0, len(intPart)+len(fracPart))
	var b strings.Builder
	for _, d := range intPart {
		b.WriteRune(d)
		chain = append(chain, b.String())
	}
	if hasFrac {
		b.WriteByte('.')
		for _, d := range fracPart {
			b.WriteRune(d)
			chain = append(chain, b.String())
		}
	}
	return chain
}

// arcLookupLabel resolves a label for a synthesized intermediate node, first
// by the literal key, then by the numeric-equivalent key.
func arcLookupLabel(prefix string, labels, normLabels map[string]string) (string, bool) {
	if l, ok := labels[prefix]; ok {
		return l, true
	}
	if l, ok := normLabels[prefix]; ok {
		return l, true
	}
	// A numeric rendering of the prefix ("4.8" as 4.8) may still match a
	// source key like "4.80".
	if f, err := strconv.ParseFloat(prefix, 64); err == nil {
		if l, ok := normLabels[strconv.FormatFloat(f, 'f', -1, 64)]; ok {
			return l, true
		}
	}
	return "", false
}

// ARCCodeMap collects the flat code→description map from source rows,
// normalized the same way the builder normalizes codes. Later rows win.
func ARCCodeMap(entries []CodeEntry) CodeMap {
	m := make(CodeMap, len(entries))
	for _, e := range entries {
		if code, ok := normalizeARCCode(e.Code); ok {
			m[code] = e.Label
		}
	}
	return m
}
