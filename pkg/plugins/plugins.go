// Package plugins runs user extensions around compilation.
//
// A plugin may hook four points: before and after the tree mutations
// (operating on the component in place or returning a replacement) and
// before and after formatting (operating on the generated text). Plugins run
// in registration order.
package plugins

import (
	"fmt"

	"github.com/recera/lwcgen/pkg/ir"
)

// JSONFunc transforms a component. Returning nil keeps the current value.
type JSONFunc func(*ir.Component) (*ir.Component, error)

// CodeFunc transforms generated text.
type CodeFunc func(string) (string, error)

// Plugin groups the hooks of one extension. Any hook may be nil.
type Plugin struct {
	Name     string
	JSONPre  JSONFunc
	JSONPost JSONFunc
	CodePre  CodeFunc
	CodePost CodeFunc
}

func (p Plugin) label(i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("plugin #%d", i)
}

// RunPreJSON applies every JSONPre hook.
func RunPreJSON(c *ir.Component, ps []Plugin) (*ir.Component, error) {
	return runJSON(c, ps, "json pre", func(p Plugin) JSONFunc { return p.JSONPre })
}

// RunPostJSON applies every JSONPost hook.
func RunPostJSON(c *ir.Component, ps []Plugin) (*ir.Component, error) {
	return runJSON(c, ps, "json post", func(p Plugin) JSONFunc { return p.JSONPost })
}

// RunPreCode applies every CodePre hook.
func RunPreCode(code string, ps []Plugin) (string, error) {
	return runCode(code, ps, "code pre", func(p Plugin) CodeFunc { return p.CodePre })
}

// RunPostCode applies every CodePost hook.
func RunPostCode(code string, ps []Plugin) (string, error) {
	return runCode(code, ps, "code post", func(p Plugin) CodeFunc { return p.CodePost })
}

func runJSON(c *ir.Component, ps []Plugin, stage string, hook func(Plugin) JSONFunc) (*ir.Component, error) {
	for i, p := range ps {
		fn := hook(p)
		if fn == nil {
			continue
		}
		next, err := fn(c)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", p.label(i), stage, err)
		}
		if next != nil {
			c = next
		}
	}
	return c, nil
}

func runCode(code string, ps []Plugin, stage string, hook func(Plugin) CodeFunc) (string, error) {
	for i, p := range ps {
		fn := hook(p)
		if fn == nil {
			continue
		}
		next, err := fn(code)
		if err != nil {
			return "", fmt.Errorf("%s %s: %w", p.label(i), stage, err)
		}
		code = next
	}
	return code, nil
}
