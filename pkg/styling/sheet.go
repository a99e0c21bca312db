package styling

import (
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

type rule struct {
	media    string
	selector string
	decls    []string
}

// sheet keeps rules in insertion order and drops exact duplicates, which
// appear when several nodes share the same name and css.
type sheet struct {
	rules []*rule
	index map[string]*rule
	seen  map[string]struct{}
}

func newSheet() *sheet {
	return &sheet{
		index: make(map[string]*rule),
		seen:  make(map[string]struct{}),
	}
}

func (s *sheet) rule(media, selector string) *rule {
	key := media + "\x00" + selector
	if r, ok := s.index[key]; ok {
		return r
	}
	r := &rule{media: media, selector: selector}
	s.index[key] = r
	s.rules = append(s.rules, r)
	return r
}

// addObject flattens a style mapping into rules for selector.
func (s *sheet) addObject(selector, media string, m *yaml.Node, log *slog.Logger) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i].Value, m.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			decl := DashCase(key) + ": " + val.Value + ";"
			dedupe := media + "\x00" + selector + "\x00" + decl
			if _, ok := s.seen[dedupe]; ok {
				continue
			}
			s.seen[dedupe] = struct{}{}
			r := s.rule(media, selector)
			r.decls = append(r.decls, decl)
		case yaml.MappingNode:
			switch {
			case strings.HasPrefix(key, "@"):
				s.addObject(selector, key, val, log)
			case strings.Contains(key, "&"):
				s.addObject(strings.ReplaceAll(key, "&", selector), media, val, log)
			case strings.HasPrefix(key, ":"):
				s.addObject(selector+key, media, val, log)
			default:
				s.addObject(selector+" "+key, media, val, log)
			}
		default:
			log.Debug("ignoring css value that is neither a scalar nor an object", "selector", selector, "key", key)
		}
	}
}

// String renders plain rules first and media blocks after them, each group
// in insertion order.
func (s *sheet) String() string {
	var b strings.Builder
	var media []*rule
	for _, r := range s.rules {
		if r.media != "" {
			media = append(media, r)
			continue
		}
		writeRule(&b, r, "")
	}

	var open string
	for _, r := range media {
		if r.media != open {
			if open != "" {
				b.WriteString("}\n")
			}
			b.WriteString(r.media + " {\n")
			open = r.media
		}
		writeRule(&b, r, "  ")
	}
	if open != "" {
		b.WriteString("}\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeRule(b *strings.Builder, r *rule, indent string) {
	b.WriteString(indent + r.selector + " {\n")
	for _, d := range r.decls {
		b.WriteString(indent + "  " + d + "\n")
	}
	b.WriteString(indent + "}\n")
}
