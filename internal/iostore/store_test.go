package iostore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gnames/gnbintax/internal/iostore"
	"github.com/gnames/gnbintax/pkg/lineage"
	"github.com/gnames/gnbintax/pkg/rank"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRanks = rank.Set{"kingdom", "phylum", "class"}

func testRows() []lineage.Row {
	return []lineage.Row{
		{
			BIN:    "BOLD:AAA0001",
			Labels: []string{"Animalia", "Arthropoda", "Insecta"},
		},
		{
			BIN:    "BOLD:AAA0002",
			Labels: []string{"Animalia", "Chordata", "Aves"},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.sqlite")

	store, err := iostore.New(path, testRanks)
	require.NoError(t, err)
	defer store.Close()

	rows := testRows()
	require.NoError(t, store.Save(ctx, rows))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, rows, got)
}

func TestLoadEmptyStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.sqlite")

	store, err := iostore.New(path, testRanks)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveReplacesContent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.sqlite")

	store, err := iostore.New(path, testRanks)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, testRows()))

	replacement := []lineage.Row{
		{
			BIN:    "BOLD:AAA0003",
			Labels: []string{"Fungi", "Ascomycota", "Sordariomycetes"},
		},
	}
	require.NoError(t, store.Save(ctx, replacement))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestLoadIgnoresForeignRankSchema(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.sqlite")

	store, err := iostore.New(path, testRanks)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testRows()))
	require.NoError(t, store.Close())

	// reopen with a different rank schema
	other, err := iostore.New(path, rank.Set{"kingdom", "family"})
	require.NoError(t, err)
	defer other.Close()

	got, err := other.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got,
		"rows written under another rank schema must not be loaded")
}

func TestStoreSurvivesReopen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.sqlite")

	store, err := iostore.New(path, testRanks)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, testRows()))
	require.NoError(t, store.Close())

	reopened, err := iostore.New(path, testRanks)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, testRows(), got)
}
