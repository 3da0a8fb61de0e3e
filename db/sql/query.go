package sql

import (
	"fmt"
	"strings"
)

type (
	// QueryFunction is a Query that reads data from a stored function.
	QueryFunction struct {
		name      string
		cols      []string
		arguments []interface{}
	}

	// ExecFunction is a Query that changes data by calling a stored function.
	ExecFunction struct {
		name      string
		arguments []interface{}
	}

	// RawQuery is a Query that changes data and has no arguments.
	RawQuery string
)

// NewQueryFunction creates a Query to call a query function.
func NewQueryFunction(name string, cols []string, args ...interface{}) QueryFunction {
	q := QueryFunction{
		name:      name,
		cols:      cols,
		arguments: args,
	}
	return q
}

// NewExecFunction creates a Query to call an exec function.
func NewExecFunction(name string, args ...interface{}) ExecFunction {
	e := ExecFunction{
		name:      name,
		arguments: args,
	}
	return e
}

// Cmd returns a SQL string to select the columns from the function.
func (q QueryFunction) Cmd() string {
	return fmt.Sprintf("SELECT %s FROM %s(%s)", strings.Join(q.cols, ", "), q.name, placeholders(len(q.arguments)))
}

// Cmd returns a SQL string to execute the function with arguments.
func (e ExecFunction) Cmd() string {
	return fmt.Sprintf("SELECT %s(%s)", e.name, placeholders(len(e.arguments)))
}

// Cmd returns the raw SQL query.
func (r RawQuery) Cmd() string {
	return string(r)
}

// Args returns the arguments for the query function.
func (q QueryFunction) Args() []interface{} {
	return q.arguments
}

// Args returns the arguments for the exec function.
func (e ExecFunction) Args() []interface{} {
	return e.arguments
}

// Args returns nil for the raw SQL query.
func (RawQuery) Args() []interface{} {
	return nil
}

// placeholders creates the positional parameters for n arguments: $1, $2, ...
func placeholders(n int) string {
	argIndexes := make([]string, n)
	for i := range argIndexes {
		argIndexes[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(argIndexes, ", ")
}
