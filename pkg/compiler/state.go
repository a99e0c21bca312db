package compiler

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/recera/lwcgen/pkg/expr"
	"github.com/recera/lwcgen/pkg/ir"
	"github.com/recera/lwcgen/pkg/jsfmt"
)

// StateFormat selects the shape StateString renders.
type StateFormat int

const (
	// FormatVariables renders one declaration per line.
	FormatVariables StateFormat = iota
	// FormatObject renders a single object literal.
	FormatObject
)

// StateOptions select and shape the state members StateString renders.
type StateOptions struct {
	Data      bool
	Getters   bool
	Functions bool
	Format    StateFormat
	// KeyPrefix is written before every declaration.
	KeyPrefix string
	// ValueMapper transforms member code before it is written.
	ValueMapper func(code string, typ ir.StateType) string
}

// StateString renders the selected groups of the component state. Data
// members are properties; functions are function and method members.
func StateString(c *ir.Component, opts StateOptions) string {
	mapValue := opts.ValueMapper
	if mapValue == nil {
		mapValue = func(code string, _ ir.StateType) string { return code }
	}
	sep := " = "
	if opts.Format == FormatObject {
		sep = ": "
	}

	var parts []string
	for pair := c.State.Oldest(); pair != nil; pair = pair.Next() {
		key, v := pair.Key, pair.Value
		if v == nil {
			continue
		}
		switch v.Type {
		case ir.StateProperty, "":
			if opts.Data {
				parts = append(parts, opts.KeyPrefix+key+sep+mapValue(v.Code, v.Type))
			}
		case ir.StateFunction:
			if opts.Functions {
				parts = append(parts, opts.KeyPrefix+key+sep+mapValue(v.Code, v.Type))
			}
		case ir.StateMethod:
			if opts.Functions {
				parts = append(parts, opts.KeyPrefix+mapValue(v.Code, v.Type))
			}
		case ir.StateGetter:
			if opts.Getters {
				parts = append(parts, opts.KeyPrefix+mapValue(v.Code, v.Type))
			}
		}
	}

	if opts.Format == FormatObject {
		return "{" + strings.Join(parts, ",") + "}"
	}
	return strings.Join(parts, "\n")
}

// Sections are the three state groups as they appear in the document. An
// empty group is the empty string.
type Sections struct {
	Data      string
	Getters   string
	Functions string
}

// minContent is the length below which a rendered group counts as empty.
// It catches "{}" from an empty object and stray punctuation.
const minContent = 4

var getterHeadRe = regexp.MustCompile(`^get\s+([\w$]+)\s*`)

// getterToArrow turns a getter declaration into an assignment of an arrow
// function: get total() { ... } becomes total = () => { ... }.
func getterToArrow(code string) string {
	code = getterHeadRe.ReplaceAllString(strings.TrimSpace(code), "${1} = ")
	return strings.Replace(code, ")", ") =>", 1)
}

// ExtractState renders the data, getter and function groups of c.
func ExtractState(c *ir.Component, opts Options) Sections {
	opts = opts.withDefaults()
	return extractState(c, opts.StateType, opts.Logger)
}

func extractState(c *ir.Component, stateType StateType, log *slog.Logger) Sections {
	stripThis := expr.Chain(stripQualifiers, expr.StripThisRefs)

	dataFormat := FormatVariables
	if stateType == StateProxies {
		dataFormat = FormatObject
	}
	data := StateString(c, StateOptions{
		Data:   true,
		Format: dataFormat,
		ValueMapper: func(code string, _ ir.StateType) string {
			return stripQualifiers.Rewrite(code)
		},
	})
	getters := StateString(c, StateOptions{
		Getters:   true,
		KeyPrefix: "$: ",
		ValueMapper: func(code string, _ ir.StateType) string {
			return stripThis.Rewrite(getterToArrow(code))
		},
	})
	functions := StateString(c, StateOptions{
		Functions: true,
		ValueMapper: func(code string, _ ir.StateType) string {
			return stripThis.Rewrite(code)
		},
	})

	if dataFormat == FormatObject {
		data = normalizeWith(jsfmt.NormalizeExpression, data, "data", log)
	} else {
		data = normalizeWith(jsfmt.Normalize, data, "data", log)
	}
	return Sections{
		Data:      nonTrivial(data),
		Getters:   nonTrivial(normalizeWith(jsfmt.Normalize, getters, "getters", log)),
		Functions: nonTrivial(normalizeWith(jsfmt.Normalize, functions, "functions", log)),
	}
}

// normalizeWith runs a normalizer and keeps the input when it cannot be
// parsed.
func normalizeWith(fn func(string) (string, error), code, group string, log *slog.Logger) string {
	out, err := fn(code)
	if err != nil {
		log.Warn("could not normalize state code, emitting it verbatim", "group", group, "error", err)
		return code
	}
	return out
}

func nonTrivial(s string) string {
	if len(s) < minContent {
		return ""
	}
	return s
}
