package compiler

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/recera/lwcgen/pkg/expr"
)

var (
	refPropRe = regexp.MustCompile(`(?m)(.+)?props\.(.+)( |\)|;|\()?$`)

	eventBody = expr.Chain(expr.UpdateStateSetters, expr.StripStateAndProps)
)

// LWC returns the Lightning Web Components dialect.
func LWC() *Dialect {
	return &Dialect{
		Name:                "lwc",
		FormatParser:        "html",
		ChildrenPlaceholder: "<slot></slot>",
		EmptySlot:           "<slot />",
		AlwaysTrue:          "true",

		Interpolate: func(e string) string { return "{" + e + "}" },
		SlotRef: func(name string) string {
			return fmt.Sprintf(`<slot name="%s"/>`, name)
		},
		NamedSlot: func(name, body string) string {
			return fmt.Sprintf(`<slot name="%s">%s</slot>`, name, body)
		},
		Outlet: func(key, content string) string {
			return fmt.Sprintf("<span slot=\"%s\">\n%s\n</span>", key, content)
		},
		Repeat:      lwcRepeat,
		Conditional: func(cond, body string) string {
			return fmt.Sprintf("<template if:true={%s}>\n%s\n</template>", cond, body)
		},
		RawHTML: func(e string) string {
			return fmt.Sprintf("<lightning-formatted-rich-text value={%s}></lightning-formatted-rich-text>", expr.CollapseSpace(e))
		},
		Spread:         func(e string) string { return "{..." + e + "}" },
		StyleDirective: func(e string) string { return "use:styling={" + e + "}" },

		Bindings: NewBindingTable(
			[]KeyHandler{
				{Match: isEventKey, Handle: lwcEvent},
				{Match: expr.IsSlotProperty, Handle: func(a Attr) (string, bool) {
					return fmt.Sprintf("%s={%s}", a.Key, a.Raw), true
				}},
			},
			map[string]AttrHandler{
				"class": func(a Attr) (string, bool) {
					return "class={" + a.Value + "}", true
				},
				"ref": lwcRef,
			},
			func(a Attr) (string, bool) {
				if !expr.IsValidAttributeName(a.Key) {
					return "", false
				}
				return fmt.Sprintf("%s={%s}", a.Key, a.Value), true
			},
		),

		Render: renderLWC,
	}
}

// isEventKey matches onClick, onChange and friends but not attributes
// that merely start with "on", such as open.
func isEventKey(key string) bool {
	rest, ok := strings.CutPrefix(key, "on")
	if !ok {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r)
}

func lwcEvent(a Attr) (string, bool) {
	args := a.Arguments
	if len(args) == 0 {
		args = []string{"event"}
	}
	return fmt.Sprintf("%s={(%s) => %s}", a.Key, strings.Join(args, ", "), eventBody.Rewrite(a.Raw)), true
}

func lwcRef(a Attr) (string, bool) {
	name := a.Value
	if m := refPropRe.FindStringSubmatch(a.Raw); m != nil && m[2] != "" {
		name = m[2]
	}
	return fmt.Sprintf(`lwc:ref="%s"`, strings.TrimSpace(name)), true
}

func lwcRepeat(collection string, args []string, key, body string) string {
	var sb strings.Builder
	sb.WriteString("<template for:each={")
	sb.WriteString(collection)
	sb.WriteString("}")
	if len(args) > 0 {
		fmt.Fprintf(&sb, ` for:item="%s"`, args[0])
	}
	if len(args) > 1 {
		fmt.Fprintf(&sb, ` for:index="%s"`, args[1])
	}
	if key != "" {
		fmt.Fprintf(&sb, " key={%s}", key)
	}
	sb.WriteString(">\n")
	sb.WriteString(body)
	sb.WriteString("\n</template>")
	return sb.String()
}

func renderLWC(doc *Document) string {
	var sb strings.Builder

	sb.WriteString("<template>\n")
	if doc.Markup != "" {
		sb.WriteString(doc.Markup)
		sb.WriteString("\n")
	}
	sb.WriteString("</template>\n")

	lang := ""
	if doc.TypeScript {
		lang = ` lang="ts"`
	}
	if doc.TypeScript && len(doc.Types) > 0 {
		sb.WriteString("\n<script" + lang + ">\n")
		sb.WriteString(strings.Join(doc.Types, "\n\n"))
		sb.WriteString("\n</script>\n")
	}

	sb.WriteString("\n<script" + lang + ">\n")
	imports := []string{"LightningElement"}
	if len(doc.Props) > 0 {
		imports = append(imports, "api")
	}
	fmt.Fprintf(&sb, "import { %s } from 'lwc';\n", strings.Join(imports, ", "))
	if doc.StateType == StateProxies && doc.Data != "" {
		sb.WriteString("import onChange from 'on-change';\n")
	}
	var ctx []string
	if len(doc.ContextGetters) > 0 {
		ctx = append(ctx, "getContext")
	}
	if len(doc.ContextSetters) > 0 {
		ctx = append(ctx, "setContext")
	}
	if len(ctx) > 0 {
		fmt.Fprintf(&sb, "import { %s } from 'c/context';\n", strings.Join(ctx, ", "))
	}

	fmt.Fprintf(&sb, "\nexport default class %s extends LightningElement {\n", className(doc.Name))

	var members []string
	if len(doc.Props) > 0 {
		lines := make([]string, 0, len(doc.Props))
		for _, p := range doc.Props {
			decl := "@api " + p.Name
			if p.Type != "" {
				decl += ": " + p.Type
			}
			if p.Default != "" {
				decl += " = " + p.Default
			}
			lines = append(lines, decl+";")
		}
		members = append(members, strings.Join(lines, "\n"))
	}
	if len(doc.ContextGetters) > 0 {
		lines := make([]string, 0, len(doc.ContextGetters))
		for _, g := range doc.ContextGetters {
			lines = append(lines, fmt.Sprintf("%s = getContext(%s);", g.Key, g.Name))
		}
		members = append(members, strings.Join(lines, "\n"))
	}
	if doc.Functions != "" {
		members = append(members, doc.Functions)
	}
	if doc.Getters != "" {
		members = append(members, doc.Getters)
	}
	if len(doc.Refs) > 0 {
		lines := make([]string, 0, len(doc.Refs))
		for _, r := range doc.Refs {
			lines = append(lines, r+";")
		}
		members = append(members, strings.Join(lines, "\n"))
	}
	if doc.Data != "" {
		if doc.StateType == StateProxies {
			members = append(members, fmt.Sprintf("state = onChange(%s, () => (this.state = this.state));", doc.Data))
		} else {
			members = append(members, doc.Data)
		}
	}

	if len(doc.ContextSetters) > 0 || doc.OnInit != "" {
		var body []string
		body = append(body, "super();")
		for _, s := range doc.ContextSetters {
			body = append(body, fmt.Sprintf("setContext(%s, %s);", s.Name, s.Value))
		}
		if doc.OnInit != "" {
			body = append(body, doc.OnInit)
		}
		members = append(members, method("constructor", strings.Join(body, "\n")))
	}
	if doc.OnMount != "" {
		members = append(members, method("connectedCallback", doc.OnMount))
	}
	if len(doc.OnUpdate) > 0 {
		members = append(members, method("renderedCallback", strings.Join(doc.OnUpdate, "\n")))
	}
	if doc.OnUnmount != "" {
		members = append(members, method("disconnectedCallback", doc.OnUnmount))
	}

	for i, m := range members {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent(m, "  "))
		sb.WriteString("\n")
	}
	sb.WriteString("}\n</script>\n")

	if strings.TrimSpace(doc.CSS) != "" {
		sb.WriteString("\n<style>\n")
		sb.WriteString(doc.CSS)
		sb.WriteString("\n</style>\n")
	}
	return sb.String()
}

func method(name, body string) string {
	return name + "() {\n" + indent(body, "  ") + "\n}"
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// className turns a component name into a class identifier:
// my-card -> MyCard. An empty name becomes MyComponent.
func className(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			upper = true
			continue
		}
		if sb.Len() == 0 && unicode.IsDigit(r) {
			sb.WriteByte('_')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	if sb.Len() == 0 {
		return "MyComponent"
	}
	return sb.String()
}
