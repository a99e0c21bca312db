// Package jsfmt normalizes generated script text and pretty prints compiled
// documents.
package jsfmt

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// SyntaxError is returned when code cannot be parsed as JavaScript. The
// normalizers still return the code they were given alongside it.
type SyntaxError struct {
	Messages []string
}

func (e *SyntaxError) Error() string {
	return "javascript syntax: " + strings.Join(e.Messages, "; ")
}

// Normalize parses code as a JavaScript program and prints it back, which
// canonicalizes spacing, quoting and semicolons. Empty input stays empty.
func Normalize(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	out, err := transform(code)
	if err != nil {
		return code, err
	}
	return strings.TrimSpace(out), nil
}

// NormalizeExpression is Normalize for a single expression such as an
// object literal.
func NormalizeExpression(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}
	out, err := transform("(" + code + ")")
	if err != nil {
		return code, err
	}
	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, ";")
	if strings.HasPrefix(out, "(") && strings.HasSuffix(out, ")") {
		out = out[1 : len(out)-1]
	}
	return out, nil
}

func transform(code string) (string, error) {
	result := api.Transform(code, api.TransformOptions{
		Loader:     api.LoaderJS,
		Sourcefile: "component.js",
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			if m.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
			} else {
				msgs = append(msgs, m.Text)
			}
		}
		return "", &SyntaxError{Messages: msgs}
	}
	return string(result.Code), nil
}
