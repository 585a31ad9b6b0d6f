package iorecon_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gnbintax/internal/iorecon"
	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/unique"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAudit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	cfg := config.New()
	res := &lifecycle.Result{
		Repairs: []unique.Decision{
			{
				Rank:        "genus",
				Label:       "Aphaenogaster",
				Action:      unique.ActionRemoved,
				RemovedBINs: []string{"BOLD:AAA0002"},
			},
		},
		DroppedBaseline: []string{"BOLD:AAA0009"},
	}

	path := filepath.Join(t.TempDir(), "audit.json")
	require.NoError(t, iorecon.WriteAudit(path, cfg, res))

	bs, err := os.ReadFile(path)
	require.NoError(t, err)

	var audit iorecon.Audit
	require.NoError(t, json.Unmarshal(bs, &audit))

	assert.NotEmpty(t, audit.RunID)
	assert.False(t, audit.Timestamp.IsZero())
	assert.Equal(t, "full", audit.Method)
	assert.Equal(t, float64(80), audit.Threshold)
	require.Len(t, audit.Repairs, 1)
	assert.Equal(t, "Aphaenogaster", audit.Repairs[0].Label)
	assert.Equal(t, []string{"BOLD:AAA0009"}, audit.DroppedBaseline)
}

func TestWriteAuditBadPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that uses file system in short mode")
	}

	cfg := config.New()
	res := &lifecycle.Result{}

	path := filepath.Join(t.TempDir(), "no-such-dir", "audit.json")
	assert.Error(t, iorecon.WriteAudit(path, cfg, res))
}
