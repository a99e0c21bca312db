package compiler

import (
	"strings"

	"github.com/recera/lwcgen/pkg/expr"
	"github.com/recera/lwcgen/pkg/ir"
)

func (b *blockContext) fragment(n *ir.Node, path string) string {
	if code := n.BindingCode("innerHTML"); code != "" {
		return b.dialect.RawHTML(stripQualifiers.Rewrite(code))
	}
	if len(n.Children) > 0 {
		return b.compileChildren(n.Children, path, "\n")
	}
	return ""
}

// loop renders a For node. The key of the template child is lifted into the
// repeat directive and compiled from a copy, so the tree is left untouched
// and the key appears exactly once.
func (b *blockContext) loop(n *ir.Node, path string) string {
	if len(n.Children) == 0 {
		b.errs.Addf(path, n.Name, ErrMissingChildren, "loop has no template child")
		return ""
	}
	each := n.BindingCode("each")
	if strings.TrimSpace(each) == "" {
		b.errs.Addf(path, n.Name, ErrMissingBinding, "loop has no each binding")
		return ""
	}

	first := n.Children[0]
	key, _ := first.Property("key")
	if key == "" {
		key = first.BindingCode("key")
	}
	children := n.Children
	if key != "" {
		children = append([]*ir.Node{first.Without("key")}, n.Children[1:]...)
	}

	return b.dialect.Repeat(
		stripQualifiers.Rewrite(each),
		n.Scope.Arguments(true),
		stripQualifiers.Rewrite(key),
		b.compileChildren(children, path, "\n"),
	)
}

// show renders a Show node. An else branch becomes a second conditional
// whose condition always holds, for targets without an else construct.
func (b *blockContext) show(n *ir.Node, path string) string {
	when := n.BindingCode("when")
	if strings.TrimSpace(when) == "" {
		b.errs.Addf(path, n.Name, ErrMissingBinding, "conditional has no when binding")
		return ""
	}
	d := b.dialect
	out := d.Conditional(stripQualifiers.Rewrite(when), b.compileChildren(n.Children, path, "\n"))
	if alt := n.Else(); alt != nil {
		out += "\n" + d.Conditional(d.AlwaysTrue, b.compile(alt, path+".meta.else"))
	}
	return out
}

func (b *blockContext) slot(n *ir.Node, path string) string {
	d := b.dialect
	name := n.BindingCode("name")
	if name == "" {
		name, _ = n.Property("name")
	} else {
		name = stripQualifiers.Rewrite(name)
	}
	if name == "" {
		first := n.Bindings.Oldest()
		if first == nil || first.Value == nil {
			return d.EmptySlot
		}
		return d.Outlet(first.Key, stripQualifiers.Rewrite(first.Value.Code))
	}
	return d.NamedSlot(
		strings.ToLower(expr.StripSlotPrefix(name)),
		b.compileChildren(n.Children, path, "\n"),
	)
}
