package table

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
)

// ReadHTML reads the first <table> of an HTML document. Its first row is
// the header; th and td cells are both accepted. Nested tables are ignored.
func ReadHTML(r io.Reader) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w: %v", internalerr.ErrInvalidInput, err)
	}

	tbl := findFirst(doc, atom.Table)
	if tbl == nil {
		return nil, fmt.Errorf("no <table> element: %w", internalerr.ErrInvalidInput)
	}

	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Tr:
				rows = append(rows, cells(c))
			case atom.Table:
				// nested
			default:
				walk(c)
			}
		}
	}
	walk(tbl)

	if len(rows) == 0 {
		return nil, fmt.Errorf("empty table: %w", internalerr.ErrInvalidInput)
	}
	t := &Table{Header: rows[0], Rows: rows[1:]}
	t.normalize()
	return t, nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func cells(tr *html.Node) []string {
	var out []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			out = append(out, strings.TrimSpace(text(c)))
		}
	}
	return out
}

func text(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
