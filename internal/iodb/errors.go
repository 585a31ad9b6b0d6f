package iodb

import (
	"fmt"

	"github.com/gnames/gnlib"
)

// ConnectionError is returned when database connection fails.
type ConnectionError struct {
	error
	gnlib.MessageBase
}

// NewConnectionError creates a connection error with user-friendly message.
func NewConnectionError(host string, port int, database, user string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Database Connection Failed</title>

<warning>Could not connect to PostgreSQL database.</warning>

<em>Possible causes:</em>
  • PostgreSQL is not running
  • Database configuration is incorrect
  • Network connectivity issues

<em>How to fix:</em>
  1. Check if PostgreSQL is running:
     <em>pg_isready -h %s -p %d</em>

  2. Verify database exists:
     <em>psql -h %s -U %s -l</em>

  3. Check your configuration file:
     <em>~/.config/gnbintax/gnbintax.yaml</em>

  4. Review connection settings:
     Host: %s
     Port: %d
     Database: %s
     User: %s
`,
		[]any{
			host, port,
			host, user,
			host, port, database, user,
		},
	)

	return ConnectionError{
		error:       fmt.Errorf("failed to connect to %s:%d/%s: %w", host, port, database, cause),
		MessageBase: userBase,
	}
}

// NotConnectedError is returned when an operation requires an active
// connection pool.
type NotConnectedError struct {
	error
	gnlib.MessageBase
}

// NewNotConnectedError creates an error for operations on a closed operator.
func NewNotConnectedError() error {
	userBase := gnlib.NewMessage(
		`<title>Database Not Connected</title>

<warning>A database operation was attempted before connecting.</warning>
`,
		nil,
	)

	return NotConnectedError{
		error:       fmt.Errorf("database operator is not connected"),
		MessageBase: userBase,
	}
}

// TableCheckError is returned when checking for a table fails.
type TableCheckError struct {
	error
	gnlib.MessageBase
}

// NewTableCheckError creates an error for when table existence check fails.
func NewTableCheckError(tableName string, cause error) error {
	userBase := gnlib.NewMessage(
		`<title>Database Check Failed</title>

<warning>Could not verify that table <em>%s</em> exists.</warning>
`,
		[]any{tableName},
	)

	return TableCheckError{
		error:       fmt.Errorf("failed to check table %s: %w", tableName, cause),
		MessageBase: userBase,
	}
}
