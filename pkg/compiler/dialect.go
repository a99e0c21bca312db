package compiler

// Dialect is the concrete syntax of one target framework. The tree-level
// compiler only decides what to emit; the dialect decides how it is spelled.
// A Dialect is read-only once built: constructors return a fresh value and
// nothing in this package writes to one.
type Dialect struct {
	Name string
	// FormatParser names the syntax handed to the formatter.
	FormatParser string

	// ChildrenPlaceholder projects the component's children.
	ChildrenPlaceholder string
	// EmptySlot is an unnamed slot without bindings.
	EmptySlot string
	// AlwaysTrue is the condition of the else branch shim.
	AlwaysTrue string

	Interpolate    func(expr string) string
	SlotRef        func(name string) string
	NamedSlot      func(name, body string) string
	Outlet         func(key, content string) string
	Repeat         func(collection string, args []string, key, body string) string
	Conditional    func(cond, body string) string
	RawHTML        func(expr string) string
	Spread         func(expr string) string
	StyleDirective func(expr string) string

	Bindings BindingTable

	// Render assembles the final document.
	Render func(doc *Document) string
}

// Attr is one binding on its way to becoming an attribute.
type Attr struct {
	Key string
	// Raw is the binding code as written.
	Raw string
	// Value is Raw with the state and props qualifiers stripped.
	Value     string
	Arguments []string
}

// AttrHandler renders an attribute. It returns false to drop the binding.
type AttrHandler func(a Attr) (string, bool)

// KeyHandler handles every key accepted by Match, such as all event keys.
type KeyHandler struct {
	Match  func(key string) bool
	Handle AttrHandler
}

// BindingTable maps binding keys to their renderers: key handlers are tried
// first in order, then exact keys, then the fallback.
type BindingTable struct {
	matchers []KeyHandler
	exact    map[string]AttrHandler
	fallback AttrHandler
}

// NewBindingTable copies its inputs so the table cannot change afterwards.
func NewBindingTable(matchers []KeyHandler, exact map[string]AttrHandler, fallback AttrHandler) BindingTable {
	t := BindingTable{
		matchers: append([]KeyHandler(nil), matchers...),
		exact:    make(map[string]AttrHandler, len(exact)),
		fallback: fallback,
	}
	for k, h := range exact {
		t.exact[k] = h
	}
	return t
}

// Handler returns the renderer for key, or nil when the binding has none.
func (t BindingTable) Handler(key string) AttrHandler {
	for _, m := range t.matchers {
		if m.Match(key) {
			return m.Handle
		}
	}
	if h, ok := t.exact[key]; ok {
		return h
	}
	return t.fallback
}

// PropDecl is a declared prop of the generated class.
type PropDecl struct {
	Name string
	// Type is the TypeScript annotation, empty when untyped.
	Type string
	// Default is the rendered default value literal, empty when absent.
	Default string
}

// ContextGetter reads a context value into a field.
type ContextGetter struct {
	Key  string
	Name string
}

// ContextSetter provides a context value.
type ContextSetter struct {
	Name  string
	Value string
}

// Document holds every section of a compiled component before the dialect
// spells it out.
type Document struct {
	Name       string
	TypeScript bool
	StateType  StateType

	Markup string
	Types  []string

	Props          []PropDecl
	ContextGetters []ContextGetter
	ContextSetters []ContextSetter
	Functions      string
	Getters        string
	Refs           []string
	Data           string

	OnInit    string
	OnMount   string
	OnUpdate  []string
	OnUnmount string

	CSS string
}
