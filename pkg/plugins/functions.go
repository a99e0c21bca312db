package plugins

import (
	"strings"

	"github.com/recera/lwcgen/pkg/ir"
)

// FunctionDeclarations turns method state members written in shorthand,
// name() {...}, into function declarations so they can be emitted as
// standalone statements. It is always the first plugin to run.
func FunctionDeclarations() Plugin {
	return Plugin{
		Name: "function-declarations",
		JSONPre: func(c *ir.Component) (*ir.Component, error) {
			for pair := c.State.Oldest(); pair != nil; pair = pair.Next() {
				v := pair.Value
				if v == nil || v.Type != ir.StateMethod {
					continue
				}
				v.Code = prefixWithFunction(v.Code)
			}
			return c, nil
		},
	}
}

func prefixWithFunction(code string) string {
	code = strings.TrimSpace(code)
	if rest, ok := strings.CutPrefix(code, "async "); ok {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "function ") || strings.HasPrefix(rest, "function*") {
			return code
		}
		return "async function " + rest
	}
	if strings.HasPrefix(code, "function ") || strings.HasPrefix(code, "function*") {
		return code
	}
	return "function " + code
}
