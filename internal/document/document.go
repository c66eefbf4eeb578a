// Package document exposes an HTML page as a tree of elements addressable by id.
// The render pipeline mutates the tree in place and serialises it back.
package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/practissac/go-certificate/internal/config"
	"golang.org/x/net/html"
)

// Tree is a parsed HTML document.
type Tree struct {
	root *html.Node
}

// Element is one element node of a Tree.
type Element struct {
	node *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Tree, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplateParse, err)
	}
	return &Tree{root: root}, nil
}

// Render writes the document as HTML.
func (t *Tree) Render(w io.Writer) error {
	if err := html.Render(w, t.root); err != nil {
		return fmt.Errorf("%s: %w", config.ErrTemplateRender, err)
	}
	return nil
}

// ElementByID returns the first element whose id equals id, or nil.
func (t *Tree) ElementByID(id string) *Element {
	var found *Element
	t.walk(func(n *html.Node) bool {
		if v, ok := attrOK(n, config.AttrID); ok && v == id {
			found = &Element{node: n}
			return false
		}
		return true
	})
	return found
}

// ElementsByIDPrefix returns every element whose id starts with prefix, in document order.
func (t *Tree) ElementsByIDPrefix(prefix string) []*Element {
	var out []*Element
	t.walk(func(n *html.Node) bool {
		if id, ok := attrOK(n, config.AttrID); ok && strings.HasPrefix(id, prefix) {
			out = append(out, &Element{node: n})
		}
		return true
	})
	return out
}

// walk visits element nodes depth-first until visit returns false.
func (t *Tree) walk(visit func(*html.Node) bool) {
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if n.Type == html.ElementNode && !visit(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !rec(c) {
				return false
			}
		}
		return true
	}
	rec(t.root)
}

// ID returns the element id.
func (e *Element) ID() string {
	return attr(e.node, config.AttrID)
}

// Text returns the concatenated text of the element and its descendants.
func (e *Element) Text() string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(e.node)
	return sb.String()
}

// SetText replaces all children of the element with a single text node.
func (e *Element) SetText(s string) {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(key string) string {
	return attr(e.node, key)
}

// SetAttr sets or adds an attribute.
func (e *Element) SetAttr(key, val string) {
	for i := range e.node.Attr {
		if e.node.Attr[i].Namespace == "" && e.node.Attr[i].Key == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// SetStyle sets one property of the inline style attribute, keeping the others.
func (e *Element) SetStyle(prop, val string) {
	var decls []string
	replaced := false
	for _, decl := range splitDecls(e.Attr(config.AttrStyle)) {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, _, _ := strings.Cut(decl, config.StylePropSep)
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			decl = fmt.Sprintf(config.FormatStyleDecl, prop, val)
			replaced = true
		}
		decls = append(decls, decl)
	}
	if !replaced {
		decls = append(decls, fmt.Sprintf(config.FormatStyleDecl, prop, val))
	}
	e.SetAttr(config.AttrStyle, strings.Join(decls, config.StyleDeclSep+" "))
}

// Style returns the value of one inline style property, or "".
func (e *Element) Style(prop string) string {
	for _, decl := range splitDecls(e.Attr(config.AttrStyle)) {
		name, val, ok := strings.Cut(decl, config.StylePropSep)
		if ok && strings.EqualFold(strings.TrimSpace(name), prop) {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// splitDecls splits an inline style on top-level semicolons. Semicolons inside
// quotes or parentheses, as in url('data:image/png;base64,...'), are kept.
func splitDecls(style string) []string {
	var out []string
	var quote rune
	depth, start := 0, 0
	for i, r := range style {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ';' && depth == 0:
			out = append(out, style[start:i])
			start = i + 1
		}
	}
	return append(out, style[start:])
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
