package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a component from its canonical JSON serialization.
func Parse(data []byte) (*Component, error) {
	var c Component
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode component: %w", err)
	}
	c.normalize()
	return &c, nil
}

// ParseYAML decodes a component written as YAML. Mapping order is kept, so
// attribute order survives the conversion.
func ParseYAML(data []byte) (*Component, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	var buf bytes.Buffer
	if err := writeYAMLAsJSON(&buf, &doc); err != nil {
		return nil, err
	}
	return Parse(buf.Bytes())
}

// ReadFile loads a component, choosing the decoder from the file extension.
func ReadFile(path string) (*Component, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var c *Component
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err = ParseYAML(data)
	default:
		c, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		base := filepath.Base(path)
		c.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return c, nil
}

// Marshal encodes the component in its canonical JSON form.
func (c *Component) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Clone returns a deep copy. Compilation mutates its input, so every target
// works on its own clone and the original stays reusable.
func (c *Component) Clone() (*Component, error) {
	data, err := c.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to clone component: %w", err)
	}
	return Parse(data)
}

// Clone returns a deep copy of the node with every container allocated, so
// a node built as a struct literal can be compiled like a parsed one.
func (n *Node) Clone() (*Node, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("failed to clone node: %w", err)
	}
	var out Node
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to clone node: %w", err)
	}
	out.normalize()
	return &out, nil
}

// UnmarshalJSON decodes a node, turning node-shaped meta values (such as an
// else branch) into *Node.
func (n *Node) UnmarshalJSON(data []byte) error {
	type nodeAlias Node
	aux := struct {
		*nodeAlias
		Meta map[string]json.RawMessage `json:"meta"`
	}{nodeAlias: (*nodeAlias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	meta, err := decodeMeta(aux.Meta)
	if err != nil {
		return fmt.Errorf("node %q meta: %w", n.Name, err)
	}
	n.Meta = meta
	return nil
}

// UnmarshalJSON decodes a component, handling meta like Node does.
func (c *Component) UnmarshalJSON(data []byte) error {
	type componentAlias Component
	aux := struct {
		*componentAlias
		Meta map[string]json.RawMessage `json:"meta"`
	}{componentAlias: (*componentAlias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	meta, err := decodeMeta(aux.Meta)
	if err != nil {
		return fmt.Errorf("component meta: %w", err)
	}
	c.Meta = meta
	return nil
}

func decodeMeta(raw map[string]json.RawMessage) (map[string]any, error) {
	meta := make(map[string]any, len(raw))
	for key, value := range raw {
		v, err := decodeMetaValue(value, key == "else")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		meta[key] = v
	}
	return meta, nil
}

// decodeMetaValue decodes one meta value. Objects tagged with the node type
// become *Node. A branch object without a tag is a node when it has a name.
func decodeMetaValue(raw json.RawMessage, branch bool) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{':
		var tag struct {
			Type string  `json:"@type"`
			Name *string `json:"name"`
		}
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return nil, err
		}
		if tag.Type == NodeType || branch && tag.Type == "" && tag.Name != nil {
			var n Node
			if err := json.Unmarshal(trimmed, &n); err != nil {
				return nil, err
			}
			return &n, nil
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, err
		}
		return decodeMeta(fields)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := decodeMetaValue(item, false)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// writeYAMLAsJSON re-encodes a YAML document as JSON without going through a
// Go map, which would lose key order.
func writeYAMLAsJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("{}")
			return nil
		}
		return writeYAMLAsJSON(buf, n.Content[0])
	case yaml.AliasNode:
		return writeYAMLAsJSON(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeYAMLAsJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeYAMLAsJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		return writeScalar(buf, n)
	default:
		return fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	default:
		s, err := json.Marshal(n.Value)
		if err != nil {
			return err
		}
		buf.Write(s)
	}
	return nil
}
