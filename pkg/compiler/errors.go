package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Structural problems that make a node uncompilable.
var (
	ErrMissingChildren = errors.New("missing children")
	ErrMissingBinding  = errors.New("missing binding")
	ErrConflictingKey  = errors.New("key set both as property and binding")
)

// Error is a structural error located at one node of the tree.
type Error struct {
	// Path locates the node, e.g. "children[0].children[2]".
	Path    string
	Node    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString("<")
	sb.WriteString(e.Node)
	sb.WriteString(">: ")
	sb.WriteString(e.Message)
	return sb.String()
}

// Unwrap returns the sentinel the error was built from.
func (e *Error) Unwrap() error { return e.Err }

// ErrorList collects structural errors while the rest of the tree keeps
// compiling.
type ErrorList struct {
	errors []*Error
}

// Add appends an error.
func (el *ErrorList) Add(err *Error) {
	el.errors = append(el.errors, err)
}

// Addf creates and adds an error.
func (el *ErrorList) Addf(path, node string, sentinel error, format string, args ...any) {
	el.errors = append(el.errors, &Error{
		Path:    path,
		Node:    node,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	})
}

// Len returns the number of errors.
func (el *ErrorList) Len() int {
	return len(el.errors)
}

// Errors returns a copy of the error slice.
func (el *ErrorList) Errors() []*Error {
	result := make([]*Error, len(el.errors))
	copy(result, el.errors)
	return result
}

// Error implements the error interface, returning all errors joined by newlines.
func (el *ErrorList) Error() string {
	if len(el.errors) == 1 {
		return el.errors[0].Error()
	}
	var sb strings.Builder
	for i, err := range el.errors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (el *ErrorList) Unwrap() []error {
	out := make([]error, len(el.errors))
	for i, err := range el.errors {
		out[i] = err
	}
	return out
}

// Err returns nil if there are no errors, otherwise the list itself.
func (el *ErrorList) Err() error {
	if len(el.errors) == 0 {
		return nil
	}
	return el
}
