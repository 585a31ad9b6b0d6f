package unique_test

import (
	"testing"

	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"
	"github.com/gnames/gnbintax/pkg/unique"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRanks = rank.Set{
	"kingdom", "phylum", "class", "order", "family", "genus", "species",
}

func row(bin string, labels ...string) lineage.Row {
	return lineage.Row{BIN: bin, Labels: labels}
}

func TestFindConflicts(t *testing.T) {
	t.Run("clean table has no conflicts", func(t *testing.T) {
		rows := []lineage.Row{
			row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
				"Lepidoptera", "Geometridae", "Arhodia", "Arhodia AH03"),
			row("BOLD:AAA0002", "Animalia", "Arthropoda", "Insecta",
				"Hymenoptera", "Formicidae", "Aphaenogaster",
				"Aphaenogaster sp1"),
		}
		conflicts := unique.FindConflicts(rows, testRanks)
		assert.True(t, conflicts.IsEmpty())
		assert.Equal(t, 0, conflicts.Count())
	})

	t.Run("detects label under two parents", func(t *testing.T) {
		rows := []lineage.Row{
			row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
				"Orthoptera", "Acrididae", "Acrotylus", "Acrotylus sp1"),
			row("BOLD:AAA0002", "Plantae", "Rhodophyta", "Florideophyceae",
				"Gigartinales", "Acrotylaceae", "Acrotylus", "Acrotylus sp2"),
		}
		conflicts := unique.FindConflicts(rows, testRanks)
		require.False(t, conflicts.IsEmpty())
		assert.Equal(t, []string{"Acrotylus"}, conflicts["genus"])
		assert.Equal(t, 1, conflicts.Count())
	})

	t.Run("root rank never conflicts", func(t *testing.T) {
		rows := []lineage.Row{
			row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
				"Lepidoptera", "Geometridae", "Arhodia", "Arhodia AH03"),
			row("BOLD:AAA0002", "Animalia", "Chordata", "Aves",
				"Passeriformes", "Corvidae", "Corvus", "Corvus corax"),
		}
		conflicts := unique.FindConflicts(rows, testRanks)
		assert.True(t, conflicts.IsEmpty())
	})
}

func TestRepairRemoval(t *testing.T) {
	// the placeholder-ancestored lineage inherited "Aphaenogaster"
	// without classification; removing it restores uniqueness
	rows := []lineage.Row{
		row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
			"Hymenoptera", "Formicidae", "Aphaenogaster",
			"Aphaenogaster sp1"),
		row("BOLD:AAA0002", "Animalia", "Animalia_X", "Animalia_XX",
			"Animalia_XXX", "Animalia_XXXX", "Aphaenogaster",
			"unresolved.Aphaenogaster"),
	}

	repaired, decisions, err := unique.Repair(rows, testRanks)
	require.NoError(t, err)

	require.Len(t, repaired, 1)
	assert.Equal(t, "BOLD:AAA0001", repaired[0].BIN)

	require.Len(t, decisions, 1)
	d := decisions[0]
	assert.Equal(t, "genus", d.Rank)
	assert.Equal(t, "Aphaenogaster", d.Label)
	assert.Equal(t, unique.ActionRemoved, d.Action)
	assert.Equal(t, []string{"BOLD:AAA0002"}, d.RemovedBINs)
	assert.Equal(t, "removed-1-records", d.Kind())

	assert.True(t, unique.FindConflicts(repaired, testRanks).IsEmpty())
}

func TestRepairRename(t *testing.T) {
	// both ancestor paths are genuine, so removal cannot help; each
	// subgroup gets a parent-prefixed name
	rows := []lineage.Row{
		row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
			"Orthoptera", "Acrididae", "Acrotylus", "Acrotylus sp1"),
		row("BOLD:AAA0002", "Plantae", "Rhodophyta", "Florideophyceae",
			"Gigartinales", "Acrotylaceae", "Acrotylus", "Acrotylus sp2"),
	}

	repaired, decisions, err := unique.Repair(rows, testRanks)
	require.NoError(t, err)
	require.Len(t, repaired, 2)

	assert.Equal(t, "Acrididae_Acrotylus", repaired[0].Labels[5])
	assert.Equal(t, "Acrididae_Acrotylus sp1", repaired[0].Labels[6])
	assert.Equal(t, "Acrotylaceae_Acrotylus", repaired[1].Labels[5])
	assert.Equal(t, "Acrotylaceae_Acrotylus sp2", repaired[1].Labels[6])

	require.Len(t, decisions, 1)
	d := decisions[0]
	assert.Equal(t, unique.ActionPrefixed, d.Action)
	assert.Equal(t, "prefixed-with-parent", d.Kind())
	assert.Equal(t,
		[]string{"Acrididae_Acrotylus", "Acrotylaceae_Acrotylus"},
		d.NewLabels)

	assert.True(t, unique.FindConflicts(repaired, testRanks).IsEmpty())
}

func TestRepairRenameAllPlaceholderAncestry(t *testing.T) {
	// removal needs a genuine path to keep; when every subgroup row is
	// placeholder-ancestored, rename is the fallback
	ranks := rank.Set{"kingdom", "phylum", "class"}
	rows := []lineage.Row{
		row("BOLD:AAA0001", "Animalia", "Animalia_X", "Shared"),
		row("BOLD:AAA0002", "Fungi", "Fungi_X", "Shared"),
	}

	repaired, decisions, err := unique.Repair(rows, ranks)
	require.NoError(t, err)
	require.Len(t, repaired, 2)

	assert.Equal(t, "Animalia_X_Shared", repaired[0].Labels[2])
	assert.Equal(t, "Fungi_X_Shared", repaired[1].Labels[2])

	require.Len(t, decisions, 1)
	assert.Equal(t, unique.ActionPrefixed, decisions[0].Action)

	assert.True(t, unique.FindConflicts(repaired, ranks).IsEmpty())
}

func TestRepairIdempotence(t *testing.T) {
	rows := []lineage.Row{
		row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
			"Lepidoptera", "Geometridae", "Arhodia", "Arhodia AH03"),
		row("BOLD:AAA0002", "Animalia", "Arthropoda", "Insecta",
			"Hymenoptera", "Formicidae", "Aphaenogaster",
			"Aphaenogaster sp1"),
	}

	repaired, decisions, err := unique.Repair(rows, testRanks)
	require.NoError(t, err)
	assert.Empty(t, decisions)
	assert.Equal(t, rows, repaired)
}

func TestRepairDoesNotMutateInput(t *testing.T) {
	rows := []lineage.Row{
		row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
			"Orthoptera", "Acrididae", "Acrotylus", "Acrotylus sp1"),
		row("BOLD:AAA0002", "Plantae", "Rhodophyta", "Florideophyceae",
			"Gigartinales", "Acrotylaceae", "Acrotylus", "Acrotylus sp2"),
	}

	_, _, err := unique.Repair(rows, testRanks)
	require.NoError(t, err)

	assert.Equal(t, "Acrotylus", rows[0].Labels[5])
	assert.Equal(t, "Acrotylus", rows[1].Labels[5])
}

func TestRepairPostInvariant(t *testing.T) {
	// mixed table: one removal case, one rename case, clean rows
	rows := []lineage.Row{
		row("BOLD:AAA0001", "Animalia", "Arthropoda", "Insecta",
			"Hymenoptera", "Formicidae", "Aphaenogaster",
			"Aphaenogaster sp1"),
		row("BOLD:AAA0002", "Animalia", "Animalia_X", "Animalia_XX",
			"Animalia_XXX", "Animalia_XXXX", "Aphaenogaster",
			"unresolved.Aphaenogaster"),
		row("BOLD:AAA0003", "Animalia", "Arthropoda", "Insecta",
			"Orthoptera", "Acrididae", "Acrotylus", "Acrotylus sp1"),
		row("BOLD:AAA0004", "Plantae", "Rhodophyta", "Florideophyceae",
			"Gigartinales", "Acrotylaceae", "Acrotylus", "Acrotylus sp2"),
		row("BOLD:AAA0005", "Animalia", "Chordata", "Aves",
			"Passeriformes", "Corvidae", "Corvus", "Corvus corax"),
	}

	repaired, decisions, err := unique.Repair(rows, testRanks)
	require.NoError(t, err)
	assert.True(t, unique.FindConflicts(repaired, testRanks).IsEmpty())
	assert.Len(t, repaired, 4)
	assert.Len(t, decisions, 2)
}
