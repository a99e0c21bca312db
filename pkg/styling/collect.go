// Package styling turns the css bindings of a component tree into scoped
// class rules.
//
// A css binding holds an object literal such as
//
//	{ color: 'red', fontSize: '12px', '&:hover': { color: 'blue' } }
//
// Each styled node receives a generated class name made of its dash-cased
// name and a short content hash, and the binding is replaced by that class.
package styling

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recera/lwcgen/pkg/ir"
	"github.com/recera/lwcgen/pkg/traverse"
	"gopkg.in/yaml.v3"
)

// Collector gathers css bindings into a stylesheet.
type Collector struct {
	// Prefix is prepended to every generated class name.
	Prefix string
	// Strict makes unparseable css bindings an error instead of a warning.
	Strict bool
	Logger *slog.Logger
}

// Collect rewrites every node carrying a css binding to use a generated
// class and returns the resulting CSS. It mutates c.
func (col *Collector) Collect(c *ir.Component) (string, error) {
	log := col.Logger
	if log == nil {
		log = slog.Default()
	}

	sheet := newSheet()
	var errs []error
	traverse.Walk(c, func(n *ir.Node) traverse.Action {
		code := strings.TrimSpace(n.BindingCode("css"))
		if code == "" {
			return traverse.Continue
		}
		n.Bindings.Delete("css")
		if code == "{}" {
			return traverse.Continue
		}

		root, err := parseStyleObject(code)
		if err != nil {
			if col.Strict {
				errs = append(errs, fmt.Errorf("<%s> css: %w", n.Name, err))
			} else {
				log.Warn("skipping unparseable css binding", "node", n.Name, "error", err)
			}
			return traverse.Continue
		}

		class := col.className(n, code)
		addClass(n, class)
		sheet.addObject("."+class, "", root, log)
		return traverse.Continue
	})

	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return sheet.String(), nil
}

func (col *Collector) className(n *ir.Node, code string) string {
	base := n.Name
	if name, ok := n.Property("$name"); ok && name != "" {
		base = name
	}
	sum := sha256.Sum256([]byte(code))
	return col.Prefix + DashCase(base) + "-" + hex.EncodeToString(sum[:])[:6]
}

func addClass(n *ir.Node, class string) {
	if b := n.Binding("class"); b != nil {
		b.Code = "(" + b.Code + ") + ' " + class + "'"
		return
	}
	if existing, ok := n.Property("class"); ok && existing != "" {
		n.SetProperty("class", existing+" "+class)
		return
	}
	n.SetProperty("class", class)
}

// parseStyleObject reads an object literal as a YAML flow mapping, which
// accepts unquoted keys, single quoted strings and nesting while keeping
// key order.
func parseStyleObject(code string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(code), &doc); err != nil {
		return nil, fmt.Errorf("parse style object: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("style binding is not an object literal")
	}
	return doc.Content[0], nil
}

// DashCase converts a camel-cased name to dash case: fontSize -> font-size,
// WebkitTransition -> -webkit-transition.
func DashCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 || isVendor(name) {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var vendorPrefixes = []string{"Webkit", "Moz", "Ms", "O"}

func isVendor(name string) bool {
	for _, p := range vendorPrefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) && name[len(p)] >= 'A' && name[len(p)] <= 'Z' {
			return true
		}
	}
	return false
}
