package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/recera/lwcgen/pkg/expr"
	"github.com/recera/lwcgen/pkg/ir"
	"github.com/recera/lwcgen/pkg/jsfmt"
)

// stripQualifiers is the rewrite every binding goes through before it is
// emitted.
var stripQualifiers expr.Rewriter = expr.StripStateAndProps

// blockContext carries what node compilation needs. Node compilation is a
// projection: it reads the tree and never writes to it.
type blockContext struct {
	dialect *Dialect
	log     *slog.Logger
	errs    *ErrorList
}

// CompileNode renders one node and its subtree as markup. It compiles a
// clone, so n may have unallocated maps and is never modified.
func CompileNode(n *ir.Node, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	opts = opts.withDefaults()
	if n == nil {
		return "", nil
	}
	n, err := n.Clone()
	if err != nil {
		return "", err
	}
	b := &blockContext{dialect: opts.Dialect, log: opts.Logger, errs: &ErrorList{}}
	out := b.compile(n, "node")
	if err := b.errs.Err(); err != nil {
		return "", err
	}
	return out, nil
}

func childPath(path string, i int) string {
	return fmt.Sprintf("%s.children[%d]", path, i)
}

func (b *blockContext) compileChildren(children []*ir.Node, path, sep string) string {
	parts := make([]string, 0, len(children))
	for i, child := range children {
		parts = append(parts, b.compile(child, childPath(path, i)))
	}
	return strings.Join(parts, sep)
}

// compile dispatches on the node kind. A node breaking the tree invariants
// is recorded as an error and rendered as nothing so its siblings still
// compile.
func (b *blockContext) compile(n *ir.Node, path string) string {
	if n == nil {
		return ""
	}
	if err := n.Validate(); err != nil {
		var conflict *ir.ConflictError
		if errors.As(err, &conflict) {
			b.errs.Addf(path, n.Name, ErrConflictingKey, "%q is set both as a property and as a binding", conflict.Key)
			return ""
		}
		b.errs.Addf(path, n.Name, err, "%v", err)
		return ""
	}

	switch ir.KindOf(n) {
	case ir.KindFragment:
		return b.fragment(n, path)
	case ir.KindFor:
		return b.loop(n, path)
	case ir.KindShow:
		return b.show(n, path)
	case ir.KindSlot:
		return b.slot(n, path)
	default:
		return b.element(n, path)
	}
}

func (b *blockContext) element(n *ir.Node, path string) string {
	d := b.dialect

	if expr.IsChildrenExpr(n.BindingCode("_text")) {
		return d.ChildrenPlaceholder
	}
	if text, ok := n.Property("_text"); ok && text != "" {
		return text
	}
	if code := n.BindingCode("_text"); code != "" {
		stripped := stripQualifiers.Rewrite(code)
		if expr.IsSlotProperty(stripped) {
			return d.SlotRef(strings.ToLower(expr.StripSlotPrefix(stripped)))
		}
		return d.Interpolate(stripped)
	}

	var attrs []string
	if code := n.BindingCode("_spread"); code != "" {
		attrs = append(attrs, d.Spread(stripQualifiers.Rewrite(code)))
	}

	styleCode := n.BindingCode("style")
	if styleCode == "" {
		styleCode, _ = n.Property("style")
	}
	styleDirective := styleCode != "" && !ir.IsComponentTag(n.Name) && d.StyleDirective != nil
	if styleDirective {
		attrs = append(attrs, d.StyleDirective(stripQualifiers.Rewrite(styleCode)))
	}

	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == "_text" || styleDirective && pair.Key == "style" {
			continue
		}
		attrs = append(attrs, fmt.Sprintf(`%s="%s"`, pair.Key, strings.ReplaceAll(pair.Value, `"`, "&quot;")))
	}

	for pair := n.Bindings.Oldest(); pair != nil; pair = pair.Next() {
		key, bind := pair.Key, pair.Value
		if bind == nil {
			continue
		}
		switch key {
		case "_spread", "_text", "innerHTML":
			continue
		case "style":
			if styleDirective {
				continue
			}
		case "css":
			if strings.TrimSpace(bind.Code) == "{}" {
				continue
			}
		}
		handle := d.Bindings.Handler(key)
		if handle == nil {
			continue
		}
		attr, ok := handle(Attr{
			Key:       key,
			Raw:       bind.Code,
			Value:     stripQualifiers.Rewrite(bind.Code),
			Arguments: bind.Arguments,
		})
		if !ok {
			b.log.Debug("dropping binding with an invalid attribute name", "node", n.Name, "key", key, "path", path)
			continue
		}
		attrs = append(attrs, attr)
	}

	var sb strings.Builder
	sb.WriteString("<" + n.Name)
	if len(attrs) > 0 {
		sb.WriteString(" " + strings.Join(attrs, " "))
	}

	if code := n.BindingCode("innerHTML"); code != "" {
		sb.WriteString(">")
		sb.WriteString(d.RawHTML(stripQualifiers.Rewrite(code)))
		sb.WriteString("</" + n.Name + ">")
		return sb.String()
	}

	if jsfmt.IsVoidElement(n.Name) {
		sb.WriteString(" />")
		return sb.String()
	}

	sb.WriteString(">")
	sb.WriteString(b.compileChildren(n.Children, path, ""))
	sb.WriteString("</" + n.Name + ">")
	return sb.String()
}
