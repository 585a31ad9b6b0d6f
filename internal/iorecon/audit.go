package iorecon

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnbintax/pkg/config"
	"github.com/gnames/gnbintax/pkg/errcode"
	"github.com/gnames/gnbintax/pkg/lifecycle"
	"github.com/gnames/gnbintax/pkg/unique"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
)

// Audit is the JSON document describing every decision of one
// reconciliation run.
type Audit struct {
	RunID           string            `json:"runId"`
	Timestamp       time.Time         `json:"timestamp"`
	Method          string            `json:"method"`
	Threshold       float64           `json:"threshold"`
	Repairs         []unique.Decision `json:"repairs"`
	DroppedBaseline []string          `json:"droppedBaseline,omitempty"`
}

// WriteAudit serializes the run's decisions to a JSON file. Decisions
// are a usability surface: they are always recorded, never silently
// applied.
func WriteAudit(
	path string,
	cfg *config.Config,
	res *lifecycle.Result,
) error {
	audit := Audit{
		RunID:           uuid.New().String(),
		Timestamp:       time.Now().UTC(),
		Method:          cfg.Consensus.Method,
		Threshold:       cfg.Consensus.Threshold,
		Repairs:         res.Repairs,
		DroppedBaseline: res.DroppedBaseline,
	}

	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(audit)
	if err != nil {
		return &gn.Error{
			Code: errcode.ReconcileAuditError,
			Msg:  "Cannot encode audit log",
			Err:  fmt.Errorf("encode audit: %w", err),
		}
	}
	if err := os.WriteFile(path, bs, 0644); err != nil {
		return &gn.Error{
			Code: errcode.ReconcileAuditError,
			Msg:  fmt.Sprintf("Cannot write audit log to <em>%s</em>", path),
			Err:  fmt.Errorf("write audit: %w", err),
		}
	}

	slog.Info(
		"Wrote audit log",
		"path", path,
		"runId", audit.RunID,
		"repairs", len(audit.Repairs),
	)
	return nil
}
