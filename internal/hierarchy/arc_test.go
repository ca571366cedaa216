package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildARC(t *testing.T) {
	t.Run("nested chain from flat codes", func(t *testing.T) {
		tree := BuildARC([]CodeEntry{
			{Code: "4", Label: "Energy"},
			{Code: "4.8", Label: "Thermal"},
			{Code: "4.81", Label: "Insulation"},
		}, nil)

		top := tree.Nodes["4"]
		require.NotNil(t, top)
		assert.Equal(t, "Energy", top.Label)
		assert.Same(t, tree.Root, top.Parent)

		mid := top.Children["4.8"]
		require.NotNil(t, mid)
		assert.Equal(t, "Thermal", mid.Label)

		leaf := mid.Children["4.81"]
		require.NotNil(t, leaf)
		assert.Equal(t, "Insulation", leaf.Label)
		assert.Empty(t, leaf.Children)
	})

	t.Run("synthesizes unlabeled intermediates", func(t *testing.T) {
		tree := BuildARC([]CodeEntry{{Code: "2.42", Label: "Boiler tune-up"}}, nil)

		require.NotNil(t, tree.Nodes["2"])
		require.NotNil(t, tree.Nodes["2.4"])
		assert.False(t, tree.Nodes["2"].HasLabel)
		assert.False(t, tree.Nodes["2.4"].HasLabel)
		assert.True(t, tree.Nodes["2.42"].HasLabel)
	})

	t.Run("every prefix of a code is reachable from the root", func(t *testing.T) {
		tree := BuildARC([]CodeEntry{{Code: "3.712", Label: "x"}}, nil)

		current := tree.Root
		for _, prefix := range []string{"3", "3.7", "3.71", "3.712"} {
			current = current.Children[prefix]
			require.NotNil(t, current, "missing prefix %s", prefix)
			assert.Equal(t, prefix, current.Code)
		}
	})

	t.Run("normalizes trailing zeros and dots", func(t *testing.T) {
		tree := BuildARC([]CodeEntry{
			{Code: "4.8100", Label: "Insulation"},
			{Code: "2.0", Label: "Direct Productivity"},
		}, nil)

		require.NotNil(t, tree.Nodes["4.81"])
		assert.Equal(t, "Insulation", tree.Nodes["4.81"].Label)
		require.NotNil(t, tree.Nodes["2"])
		assert.Equal(t, "Direct Productivity", tree.Nodes["2"].Label)
		assert.Nil(t, tree.Nodes["4.8100"])
	})

	t.Run("resolves intermediate labels through numeric key form", func(t *testing.T) {
		// The source row for 4.8 is keyed "4.80"; the intermediate node built
		// while inserting 4.81 must still pick its label up.
		tree := BuildARC([]CodeEntry{
			{Code: "4.81", Label: "Insulation"},
			{Code: "4.80", Label: "Thermal"},
		}, nil)

		mid := tree.Nodes["4.8"]
		require.NotNil(t, mid)
		assert.True(t, mid.HasLabel)
		assert.Equal(t, "Thermal", mid.Label)
	})

	t.Run("skips malformed codes without aborting", func(t *testing.T) {
		tree := BuildARC([]CodeEntry{
			{Code: "N/A", Label: "junk"},
			{Code: "4.8.1", Label: "junk"},
			{Code: "", Label: "junk"},
			{Code: "4", Label: "Energy"},
		}, nil)

		assert.Equal(t, 1, tree.Len())
		assert.NotNil(t, tree.Nodes["4"])
	})

	t.Run("later row wins the label and keeps children", func(t *testing.T) {
		tree := BuildARC([]CodeEntry{
			{Code: "4.81", Label: "Insulation"},
			{Code: "4.8", Label: "Thermal"},
			{Code: "4.8", Label: "Thermal Systems"},
		}, nil)

		mid := tree.Nodes["4.8"]
		require.NotNil(t, mid)
		assert.Equal(t, "Thermal Systems", mid.Label)
		assert.Contains(t, mid.Children, "4.81")
	})
}

func TestNormalizeARCCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"4.811", "4.811", true},
		{"4.8100", "4.81", true},
		{"4.000", "4", true},
		{" 2.42 ", "2.42", true},
		{"12", "12", true},
		{"", "", false},
		{".", "", false},
		{".5", "", false},
		{"4.8.1", "", false},
		{"4a", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeARCCode(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestARCPrefixChain(t *testing.T) {
	assert.Equal(t, []string{"4"}, arcPrefixChain("4"))
	assert.Equal(t, []string{"4", "4.8", "4.81", "4.811"}, arcPrefixChain("4.811"))
	assert.Equal(t, []string{"1", "12", "12.3"}, arcPrefixChain("12.3"))
}

func TestARCCodeMap(t *testing.T) {
	m := ARCCodeMap([]CodeEntry{
		{Code: "4.8100", Label: "Insulation"},
		{Code: "bogus", Label: "junk"},
		{Code: "4", Label: "first"},
		{Code: "4", Label: "second"},
	})
	assert.Equal(t, CodeMap{"4.81": "Insulation", "4": "second"}, m)
}
