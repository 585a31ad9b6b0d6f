package iotable

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// TableReadError is returned when an input table cannot be opened or
// parsed.
type TableReadError struct {
	error
	gnlib.MessageBase
}

// NewTableReadError creates a new table read error.
func NewTableReadError(path string, err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Read Table</title>
<warn>Failed to read the tab-separated table <em>%s</em>.</warn>

<em>How to fix:</em>
  1. Verify the file exists and is readable
  2. Check that the file is tab-separated with a header row
  3. For .gz files, verify the file is valid gzip
`,
		Vars: []any{path},
	}

	return TableReadError{
		error:       fmt.Errorf("failed to read table %s: %w", path, err),
		MessageBase: msgBase,
	}
}

// TableColumnError is returned when a required column is missing from
// an input table header.
type TableColumnError struct {
	error
	gnlib.MessageBase
}

// NewTableColumnError creates a new missing column error.
func NewTableColumnError(path, column string) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Missing Table Column</title>
<warn>Table <em>%s</em> has no <em>%s</em> column.</warn>

<em>How to fix:</em>
  1. Check the header row of the file
  2. Input tables need a bin_uri column and one column per configured rank
  3. If your ranks differ from the defaults, set them in config.yaml
`,
		Vars: []any{path, column},
	}

	return TableColumnError{
		error: fmt.Errorf(
			"table %s is missing required column %q", path, column,
		),
		MessageBase: msgBase,
	}
}

// TableValueError is returned when a cell cannot be parsed.
type TableValueError struct {
	error
	gnlib.MessageBase
}

// NewTableValueError creates a new cell value error.
func NewTableValueError(path string, line int, column, value string) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Invalid Table Value</title>
<warn>Table <em>%s</em> line %d: column <em>%s</em> has value '%s'.</warn>

<em>How to fix:</em>
  1. The 'n' column must hold positive integers
  2. Remove or correct the offending line
`,
		Vars: []any{path, line, column, value},
	}

	return TableValueError{
		error: fmt.Errorf(
			"table %s line %d: invalid %s value %q", path, line, column, value,
		),
		MessageBase: msgBase,
	}
}

// TableWriteError is returned when an output table cannot be written.
type TableWriteError struct {
	error
	gnlib.MessageBase
}

// NewTableWriteError creates a new table write error.
func NewTableWriteError(path string, err error) error {
	msgBase := gnlib.MessageBase{
		Msg: `<title>Cannot Write Table</title>
<warn>Failed to write the output table <em>%s</em>.</warn>

<em>How to fix:</em>
  1. Check that the output directory exists and is writable
  2. Check available disk space: <em>df -h</em>
`,
		Vars: []any{path},
	}

	return TableWriteError{
		error:       fmt.Errorf("failed to write table %s: %w", path, err),
		MessageBase: msgBase,
	}
}
