// Package ir defines the canonical, framework-neutral component tree that the
// compiler consumes.
//
// A Component owns its Node tree. Nodes own their bindings and children; the
// tree has no cycles. Attribute maps are insertion ordered so that compiled
// output follows the order the author wrote.
package ir

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Type tags used by the canonical JSON serialization.
const (
	ComponentType = "@builder.io/mitosis/component"
	NodeType      = "@builder.io/mitosis/node"
)

// Properties maps a static attribute key to its literal value.
type Properties = orderedmap.OrderedMap[string, string]

// Bindings maps an attribute key to its expression.
type Bindings = orderedmap.OrderedMap[string, *Binding]

// State maps a state member name to its declaration.
type State = orderedmap.OrderedMap[string, *StateValue]

// Props maps a declared prop name to its metadata.
type Props = orderedmap.OrderedMap[string, *Prop]

// Binding is a dynamic, expression-backed attribute or text value.
type Binding struct {
	Code      string   `json:"code"`
	Arguments []string `json:"arguments,omitempty"`
	Type      string   `json:"type,omitempty"`
}

// Scope carries the loop variables of a For node.
type Scope struct {
	ForName        string `json:"forName,omitempty"`
	IndexName      string `json:"indexName,omitempty"`
	CollectionName string `json:"collectionName,omitempty"`
}

// Node is one tagged entity in the tree.
type Node struct {
	Type       string         `json:"@type"`
	Name       string         `json:"name"`
	Meta       map[string]any `json:"meta"`
	Scope      Scope          `json:"scope"`
	Properties *Properties    `json:"properties"`
	Bindings   *Bindings      `json:"bindings"`
	Children   []*Node        `json:"children"`
}

// StateType partitions state members.
type StateType string

const (
	StateProperty StateType = "property"
	StateFunction StateType = "function"
	StateMethod   StateType = "method"
	StateGetter   StateType = "getter"
)

// StateValue is one member of a component's state.
type StateValue struct {
	Code          string    `json:"code"`
	Type          StateType `json:"type"`
	TypeParameter string    `json:"typeParameter,omitempty"`
}

// Prop describes a declared prop.
type Prop struct {
	PropertyType string `json:"propertyType,omitempty"`
	Optional     bool   `json:"optional,omitempty"`
}

// Hook is a lifecycle hook body. Deps is only meaningful for update hooks.
type Hook struct {
	Code string `json:"code"`
	Deps string `json:"deps,omitempty"`
}

// Hooks is the set of lifecycle hooks a component declares.
type Hooks struct {
	OnInit    *Hook  `json:"onInit,omitempty"`
	OnMount   *Hook  `json:"onMount,omitempty"`
	OnUpdate  []Hook `json:"onUpdate,omitempty"`
	OnUnmount *Hook  `json:"onUnMount,omitempty"`
}

// ContextGet is a context subscription.
type ContextGet struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// ContextSet is a provided context value.
type ContextSet struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Ref   string `json:"ref,omitempty"`
}

// Context holds the context reads and writes of a component.
type Context struct {
	Get map[string]ContextGet `json:"get"`
	Set map[string]ContextSet `json:"set"`
}

// Component is the root of the canonical tree.
type Component struct {
	Type         string         `json:"@type"`
	Name         string         `json:"name"`
	Meta         map[string]any `json:"meta"`
	Props        *Props         `json:"props"`
	DefaultProps map[string]any `json:"defaultProps,omitempty"`
	PropsTypeRef string         `json:"propsTypeRef,omitempty"`
	State        *State         `json:"state"`
	Hooks        Hooks          `json:"hooks"`
	Context      Context        `json:"context"`
	Types        []string       `json:"types,omitempty"`
	Children     []*Node        `json:"children"`
}

// NewComponent returns an empty component with every container allocated.
func NewComponent(name string) *Component {
	c := &Component{Name: name}
	c.normalize()
	return c
}

// NewNode returns a node with empty attribute maps.
func NewNode(name string) *Node {
	n := &Node{Name: name}
	n.normalize()
	return n
}

// Property returns the static property stored under key.
func (n *Node) Property(key string) (string, bool) {
	return n.Properties.Get(key)
}

// Binding returns the binding stored under key, or nil.
func (n *Node) Binding(key string) *Binding {
	b, _ := n.Bindings.Get(key)
	return b
}

// BindingCode returns the code of the binding stored under key, or "".
func (n *Node) BindingCode(key string) string {
	if b := n.Binding(key); b != nil {
		return b.Code
	}
	return ""
}

// SetProperty stores a static property.
func (n *Node) SetProperty(key, value string) *Node {
	n.Properties.Set(key, value)
	return n
}

// SetBinding stores a binding with optional argument names.
func (n *Node) SetBinding(key, code string, args ...string) *Node {
	n.Bindings.Set(key, &Binding{Code: code, Arguments: args})
	return n
}

// Append adds children and returns the node.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Without returns a shallow copy of n whose properties and bindings lack
// keys. Children, meta and binding values are shared with n.
func (n *Node) Without(keys ...string) *Node {
	cp := *n
	cp.Properties = orderedmap.New[string, string]()
	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		cp.Properties.Set(pair.Key, pair.Value)
	}
	cp.Bindings = orderedmap.New[string, *Binding]()
	for pair := n.Bindings.Oldest(); pair != nil; pair = pair.Next() {
		cp.Bindings.Set(pair.Key, pair.Value)
	}
	for _, k := range keys {
		cp.Properties.Delete(k)
		cp.Bindings.Delete(k)
	}
	return &cp
}

// Else returns the alternative branch attached to a Show node, if any.
func (n *Node) Else() *Node {
	if n.Meta == nil {
		return nil
	}
	if e, ok := n.Meta["else"].(*Node); ok {
		return e
	}
	return nil
}

// SetElse attaches an alternative branch.
func (n *Node) SetElse(alt *Node) *Node {
	if n.Meta == nil {
		n.Meta = map[string]any{}
	}
	n.Meta["else"] = alt
	return n
}

// Text returns a static text node.
func Text(text string) *Node {
	return NewNode("div").SetProperty("_text", text)
}

// BoundText returns a text node bound to an expression.
func BoundText(code string) *Node {
	return NewNode("div").SetBinding("_text", code)
}

// SetState stores a state member.
func (c *Component) SetState(name, code string, typ StateType) *Component {
	c.State.Set(name, &StateValue{Code: code, Type: typ})
	return c
}

// Append adds root children and returns the component.
func (c *Component) Append(children ...*Node) *Component {
	c.Children = append(c.Children, children...)
	return c
}

func (c *Component) normalize() {
	if c.Type == "" {
		c.Type = ComponentType
	}
	if c.Meta == nil {
		c.Meta = map[string]any{}
	}
	if c.Props == nil {
		c.Props = orderedmap.New[string, *Prop]()
	}
	if c.State == nil {
		c.State = orderedmap.New[string, *StateValue]()
	}
	if c.Context.Get == nil {
		c.Context.Get = map[string]ContextGet{}
	}
	if c.Context.Set == nil {
		c.Context.Set = map[string]ContextSet{}
	}
	for _, child := range c.Children {
		if child != nil {
			child.normalize()
		}
	}
	for _, v := range c.Meta {
		normalizeValue(v)
	}
}

func (n *Node) normalize() {
	if n.Type == "" {
		n.Type = NodeType
	}
	if n.Meta == nil {
		n.Meta = map[string]any{}
	}
	if n.Properties == nil {
		n.Properties = orderedmap.New[string, string]()
	}
	if n.Bindings == nil {
		n.Bindings = orderedmap.New[string, *Binding]()
	}
	for _, child := range n.Children {
		if child != nil {
			child.normalize()
		}
	}
	for _, v := range n.Meta {
		normalizeValue(v)
	}
}

func normalizeValue(v any) {
	switch t := v.(type) {
	case *Node:
		if t != nil {
			t.normalize()
		}
	case []*Node:
		for _, n := range t {
			normalizeValue(n)
		}
	case []any:
		for _, item := range t {
			normalizeValue(item)
		}
	case map[string]any:
		for _, item := range t {
			normalizeValue(item)
		}
	}
}
