package hierarchy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestARCSnapshotRoundTrip(t *testing.T) {
	entries := []CodeEntry{
		{Code: "4", Label: "Energy"},
		{Code: "4.8", Label: "Thermal"},
		{Code: "4.81", Label: "Insulation"},
		{Code: "2.42", Label: "Drives"},
	}
	tree := BuildARC(entries, nil)
	codes := ARCCodeMap(entries)

	path := filepath.Join(t.TempDir(), "arc_hierarchy.json")
	require.NoError(t, SaveARCSnapshot(path, tree, codes))

	reloaded, reloadedCodes, err := LoadARCSnapshot(path)
	require.NoError(t, err)

	// The flat code map survives unchanged.
	assert.Equal(t, codes, reloadedCodes)

	// Re-flattening the reloaded tree yields the original map; synthetic
	// intermediates (2, 2.4) stay unlabeled through the round trip.
	assert.Equal(t, codes, reloaded.Flatten())
	require.NotNil(t, reloaded.Nodes["2.4"])
	assert.False(t, reloaded.Nodes["2.4"].HasLabel)

	// Structure is preserved.
	assert.Same(t, reloaded.Nodes["4.8"], reloaded.Nodes["4.81"].Parent)
	assert.NotNil(t, reloaded.SubtreeByPrecision("4.81"))
}

func TestARCSnapshotDocumentShape(t *testing.T) {
	tree := BuildARC([]CodeEntry{{Code: "4", Label: "Energy"}}, nil)
	path := filepath.Join(t.TempDir(), "arc.json")
	require.NoError(t, SaveARCSnapshot(path, tree, CodeMap{"4": "Energy"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "hierarchy")
	assert.Contains(t, doc, "codes")
}

func TestNAICSSnapshotRoundTrip(t *testing.T) {
	tree := naicsFixture(t)

	path := filepath.Join(t.TempDir(), "naics_hierarchy.json")
	require.NoError(t, SaveNAICSSnapshot(path, tree))

	reloaded, err := LoadNAICSSnapshot(path)
	require.NoError(t, err)

	assert.Equal(t, tree.Len(), reloaded.Len())
	assert.Equal(t, tree.Flatten(), reloaded.Flatten())

	// Alias resolution survives the reload.
	retail := reloaded.Node("44")
	require.NotNil(t, retail)
	assert.Equal(t, "44-45", retail.Code)
	assert.Equal(t, KindRange, retail.Kind)
	assert.ElementsMatch(t, []string{"44", "45"}, retail.AlternateCodes)

	// Parent links are rebuilt.
	assert.Same(t, reloaded.Nodes["4411"], reloaded.Nodes["44111"].Parent)
	path2 := reloaded.AncestorPath("44111")
	require.Len(t, path2, 3)
	assert.Equal(t, "44-45", path2[0].Code)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, _, err := LoadARCSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadNAICSSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
