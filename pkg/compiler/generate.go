// Package compiler turns a canonical component into a target framework
// document.
//
// Generate runs the pipeline on a private clone of its input:
//
//	clone → json pre plugins → refs, two-way bindings, getter calls →
//	json post plugins → styles → markup and state sections → render →
//	code pre plugins → format → code post plugins
//
// Plugins, the binding and getter rewrites, style collection and meta
// stripping mutate the clone in place. Markup compilation and state
// extraction only read it. The caller's component is never modified, so it
// can be compiled again, for another target or with other options.
package compiler

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/recera/lwcgen/pkg/ir"
	"github.com/recera/lwcgen/pkg/jsfmt"
	"github.com/recera/lwcgen/pkg/plugins"
)

// Generate compiles c with opts. Structural errors in the tree are returned
// together as an *ErrorList. Problems the compiler can work around, such as
// code it cannot normalize or a failing formatter, are logged instead.
func Generate(c *ir.Component, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	opts = opts.withDefaults()
	log := opts.Logger.With("component", c.Name, "target", opts.Dialect.Name)

	json, err := c.Clone()
	if err != nil {
		return "", fmt.Errorf("clone component: %w", err)
	}
	pipeline := append([]plugins.Plugin{plugins.FunctionDeclarations()}, opts.Plugins...)

	if json, err = plugins.RunPreJSON(json, pipeline); err != nil {
		return "", err
	}
	refs := collectRefs(json)
	bindValues(json)
	gettersToFunctions(json)
	if json, err = plugins.RunPostJSON(json, pipeline); err != nil {
		return "", err
	}

	css, err := opts.Styles.Collect(json)
	if err != nil {
		return "", fmt.Errorf("collect styles: %w", err)
	}
	stripMetaProperties(json)

	b := &blockContext{dialect: opts.Dialect, log: log, errs: &ErrorList{}}
	markup := b.compileChildren(json.Children, "children", "\n")
	if err := b.errs.Err(); err != nil {
		return "", err
	}

	doc := buildDocument(json, opts, log)
	doc.Markup = markup
	doc.CSS = css
	for _, ref := range refs {
		doc.Refs = append(doc.Refs, stripQualifiers.Rewrite(ref))
	}
	log.Debug("assembled document", "props", len(doc.Props), "refs", len(doc.Refs), "css", len(css) > 0)

	str := opts.Dialect.Render(doc)
	if str, err = plugins.RunPreCode(str, pipeline); err != nil {
		return "", err
	}
	if opts.Prettier {
		formatted, err := opts.Formatter.Format(str, opts.Dialect.FormatParser)
		if err != nil {
			log.Warn("could not format output, keeping it unformatted", "error", err)
		} else {
			str = formatted
		}
	}
	if str, err = plugins.RunPostCode(str, pipeline); err != nil {
		return "", err
	}
	return str, nil
}

func buildDocument(c *ir.Component, opts Options, log *slog.Logger) *Document {
	sections := extractState(c, opts.StateType, log)
	doc := &Document{
		Name:       c.Name,
		TypeScript: opts.TypeScript,
		StateType:  opts.StateType,
		Types:      c.Types,
		Data:       sections.Data,
		Getters:    sections.Getters,
		Functions:  sections.Functions,
	}

	typeRef := strings.TrimSpace(strings.Split(c.PropsTypeRef, " |")[0])
	for _, name := range collectProps(c) {
		p := PropDecl{Name: name}
		if opts.TypeScript && typeRef != "" && typeRef != "any" {
			p.Type = fmt.Sprintf("%s['%s']", typeRef, name)
		}
		if v, ok := c.DefaultProps[name]; ok {
			p.Default = Literal(v)
		}
		doc.Props = append(doc.Props, p)
	}

	for _, key := range sortedKeys(c.Context.Get) {
		doc.ContextGetters = append(doc.ContextGetters, ContextGetter{Key: key, Name: c.Context.Get[key].Name})
	}
	for _, key := range sortedKeys(c.Context.Set) {
		set := c.Context.Set[key]
		value := set.Value
		if value == "" {
			value = set.Ref
		}
		if value == "" {
			value = "undefined"
		}
		doc.ContextSetters = append(doc.ContextSetters, ContextSetter{Name: set.Name, Value: stripQualifiers.Rewrite(value)})
	}

	hook := func(h *ir.Hook, name string) string {
		if h == nil || strings.TrimSpace(h.Code) == "" {
			return ""
		}
		return hookCode(h.Code, name, log)
	}
	doc.OnInit = hook(c.Hooks.OnInit, "onInit")
	doc.OnMount = hook(c.Hooks.OnMount, "onMount")
	doc.OnUnmount = hook(c.Hooks.OnUnmount, "onUnmount")
	for i := range c.Hooks.OnUpdate {
		if code := hook(&c.Hooks.OnUpdate[i], "onUpdate"); code != "" {
			doc.OnUpdate = append(doc.OnUpdate, code)
		}
	}
	return doc
}

// hookCode strips qualifiers from a hook body and normalizes it, falling
// back to the stripped text when it does not parse.
func hookCode(code, hook string, log *slog.Logger) string {
	stripped := stripQualifiers.Rewrite(code)
	out, err := jsfmt.Normalize(stripped)
	if err != nil {
		log.Warn("could not normalize hook code, emitting it verbatim", "hook", hook, "error", err)
		return strings.TrimSpace(stripped)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
