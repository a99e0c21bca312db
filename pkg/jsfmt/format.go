package jsfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/wavetermdev/htmltoken"
)

// Formatter pretty prints a document written in the named syntax.
type Formatter interface {
	Format(src, parser string) (string, error)
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(src, parser string) (string, error)

// Format calls f.
func (f FormatFunc) Format(src, parser string) (string, error) { return f(src, parser) }

// Pretty is the default markup formatter. It puts every tag and text run on
// its own line indented by nesting depth, keeps short elements on one line
// and reindents script and style bodies by bracket depth. It fails on
// unbalanced markup, which makes it double as a well-formedness check.
type Pretty struct {
	// Indent is the unit of indentation, two spaces when empty.
	Indent string
	// Width bounds the length of an element collapsed onto one line.
	Width int
}

// Format implements Formatter for the "html" parser.
func (p Pretty) Format(src, parser string) (string, error) {
	if parser != "html" {
		return "", fmt.Errorf("pretty: unsupported parser %q", parser)
	}
	toks, err := lexMarkup(src)
	if err != nil {
		return "", err
	}
	pr := &printer{indent: p.Indent, width: p.Width}
	if pr.indent == "" {
		pr.indent = "  "
	}
	if pr.width <= 0 {
		pr.width = 80
	}
	if err := pr.print(toks); err != nil {
		return "", err
	}
	return pr.b.String(), nil
}

type tokenKind int

const (
	tokText tokenKind = iota
	tokOpen
	tokClose
	tokVoid
	tokComment
	tokRaw
)

type token struct {
	kind tokenKind
	name string
	text string
	line int
}

// attrEscaper re-escapes quoted attribute values, which the tokenizer
// hands back unescaped.
var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")

// lexMarkup splits src into printer tokens. Braced attribute values come
// back from the tokenizer verbatim, so expressions holding quotes, spaces
// or '>' survive. Text keeps its raw bytes.
func lexMarkup(src string) ([]token, error) {
	z := htmltoken.NewTokenizer(strings.NewReader(src))
	var toks []token
	line := 1
	for {
		tt := z.Next()
		raw := string(z.Raw())
		if tt == htmltoken.ErrorToken {
			if err := z.Err(); err != io.EOF {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if strings.TrimSpace(raw) != "" {
				return nil, fmt.Errorf("line %d: unterminated tag", line)
			}
			return toks, nil
		}
		tok := z.Token()

		switch tt {
		case htmltoken.TextToken:
			kind := tokText
			if n := len(toks); n > 0 && toks[n-1].kind == tokOpen && isRawTextElement(toks[n-1].name) {
				kind = tokRaw
			}
			if kind == tokText || strings.TrimSpace(raw) != "" {
				toks = append(toks, token{kind: kind, text: raw, line: line})
			}
		case htmltoken.StartTagToken:
			kind := tokOpen
			if IsVoidElement(tok.Data) {
				kind = tokVoid
			}
			toks = append(toks, token{kind: kind, name: tok.Data, text: tagText(tok, kind == tokVoid), line: line})
		case htmltoken.SelfClosingTagToken:
			toks = append(toks, token{kind: tokVoid, name: tok.Data, text: tagText(tok, true), line: line})
		case htmltoken.EndTagToken:
			toks = append(toks, token{kind: tokClose, name: tok.Data, text: "</" + tok.Data + ">", line: line})
		case htmltoken.CommentToken, htmltoken.DoctypeToken:
			if strings.HasPrefix(raw, "<!--") && !strings.HasSuffix(raw, "-->") {
				return nil, fmt.Errorf("line %d: unterminated comment", line)
			}
			toks = append(toks, token{kind: tokComment, text: strings.TrimSpace(raw), line: line})
		}
		line += strings.Count(raw, "\n")
	}
}

// tagText re-emits a start tag with single spaces between attributes.
// Valueless attributes stay bare.
func tagText(t htmltoken.Token, selfClosing bool) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(t.Data)
	for _, a := range t.Attr {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		switch {
		case a.IsJson:
			b.WriteString("={")
			b.WriteString(a.Val)
			b.WriteString("}")
		case a.Val != "":
			b.WriteString(`="`)
			b.WriteString(attrEscaper.Replace(a.Val))
			b.WriteString(`"`)
		}
	}
	if selfClosing {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	return b.String()
}

func isRawTextElement(name string) bool {
	return name == "script" || name == "style"
}

type printer struct {
	b      strings.Builder
	indent string
	width  int
	depth  int
	stack  []token
}

func (p *printer) line(depth int, s string) {
	p.b.WriteString(strings.Repeat(p.indent, depth))
	p.b.WriteString(s)
	p.b.WriteByte('\n')
}

func (p *printer) print(toks []token) error {
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokText:
			text := strings.TrimSpace(collapseSpace(t.text))
			if text != "" {
				p.line(p.depth, text)
			}
		case tokComment, tokVoid:
			p.line(p.depth, t.text)
		case tokOpen:
			if n, ok := p.inline(toks, i); ok {
				i += n
				continue
			}
			p.line(p.depth, t.text)
			p.stack = append(p.stack, t)
			p.depth++
		case tokClose:
			if len(p.stack) == 0 {
				return fmt.Errorf("line %d: unexpected </%s>", t.line, t.name)
			}
			open := p.stack[len(p.stack)-1]
			if open.name != t.name {
				return fmt.Errorf("line %d: </%s> closes <%s> opened on line %d", t.line, t.name, open.name, open.line)
			}
			p.stack = p.stack[:len(p.stack)-1]
			p.depth--
			p.line(p.depth, t.text)
		case tokRaw:
			p.raw(t.text)
		}
	}
	if len(p.stack) > 0 {
		open := p.stack[len(p.stack)-1]
		return fmt.Errorf("line %d: unclosed <%s>", open.line, open.name)
	}
	return nil
}

// inline prints an element holding at most one short text run on a single
// line and reports how many extra tokens it consumed.
func (p *printer) inline(toks []token, i int) (int, bool) {
	open := toks[i]
	if i+1 < len(toks) && toks[i+1].kind == tokClose && toks[i+1].name == open.name {
		p.line(p.depth, open.text+toks[i+1].text)
		return 1, true
	}
	if i+2 < len(toks) && toks[i+1].kind == tokText && toks[i+2].kind == tokClose && toks[i+2].name == open.name {
		text := strings.TrimSpace(collapseSpace(toks[i+1].text))
		s := open.text + text + toks[i+2].text
		if len(p.indent)*p.depth+len(s) <= p.width {
			p.line(p.depth, s)
			return 2, true
		}
	}
	return 0, false
}

// raw reindents a script or style body by bracket nesting. A run of blank
// lines is kept as one.
func (p *printer) raw(body string) {
	var open []int
	blank := false
	wrote := false
	for n, ln := range strings.Split(body, "\n") {
		t := strings.TrimSpace(ln)
		if t == "" {
			blank = true
			continue
		}
		if blank && wrote {
			p.b.WriteByte('\n')
		}
		blank = false

		k := 0
		for k < len(t) && isCloser(t[k]) && len(open) > 0 {
			open = open[:len(open)-1]
			k++
		}
		p.line(p.depth+levels(open), t)
		wrote = true

		walkBrackets(t[k:], func(c byte) {
			if isCloser(c) {
				if len(open) > 0 {
					open = open[:len(open)-1]
				}
				return
			}
			open = append(open, n)
		})
	}
}

// levels counts the distinct lines holding unclosed brackets, so that
// several brackets opened on one line indent once.
func levels(open []int) int {
	n := 0
	for i, line := range open {
		if i == 0 || open[i-1] != line {
			n++
		}
	}
	return n
}

// walkBrackets calls fn for every bracket in s outside string literals and
// line comments.
func walkBrackets(s string, fn func(byte)) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				return
			}
		case '{', '(', '[', '}', ')', ']':
			fn(c)
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isCloser(c byte) bool { return c == '}' || c == ')' || c == ']' }
