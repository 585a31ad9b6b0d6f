package iostore

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// StoreOpenError is returned when the baseline store cannot be opened
// or initialized.
type StoreOpenError struct {
	error
	gnlib.MessageBase
}

// NewStoreOpenError creates a new store open error.
func NewStoreOpenError(path string, err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Open Baseline Store</title>
<warn>Failed to open the sqlite baseline store <em>%s</em>.</warn>

<em>How to fix:</em>
  1. Check that the directory exists and is writable
  2. If the file is corrupted, remove it; it will be recreated
`,
		Vars: []any{path},
	}

	return StoreOpenError{
		error:       fmt.Errorf("failed to open baseline store %s: %w", path, err),
		MessageBase: msgBase,
	}
}

// StoreQueryError is returned when reading from the baseline store
// fails.
type StoreQueryError struct {
	error
	gnlib.MessageBase
}

// NewStoreQueryError creates a new store query error.
func NewStoreQueryError(err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Read Baseline Store</title>
<warn>Failed to read lineages from the baseline store.</warn>

<em>How to fix:</em>
  1. Remove the store file; it will be recreated on the next run
`,
		Vars: nil,
	}

	return StoreQueryError{
		error:       fmt.Errorf("failed to query baseline store: %w", err),
		MessageBase: msgBase,
	}
}

// StoreSaveError is returned when writing to the baseline store fails.
type StoreSaveError struct {
	error
	gnlib.MessageBase
}

// NewStoreSaveError creates a new store save error.
func NewStoreSaveError(err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Save Baseline Store</title>
<warn>Failed to write lineages to the baseline store.</warn>

<em>How to fix:</em>
  1. Check available disk space: <em>df -h</em>
  2. Check that the cache directory is writable
`,
		Vars: nil,
	}

	return StoreSaveError{
		error:       fmt.Errorf("failed to save baseline store: %w", err),
		MessageBase: msgBase,
	}
}
