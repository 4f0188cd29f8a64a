package htmlutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeText concatenates the text nodes under node in document order,
// leaving out the contents of script and style elements.
func NodeText(node *html.Node) string {
	if node == nil {
		return ""
	}

	var out strings.Builder
	stack := []*html.Node{node}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch current.Type {
		case html.TextNode:
			out.WriteString(current.Data)
			continue
		case html.ElementNode:
			if current.DataAtom == atom.Script || current.DataAtom == atom.Style {
				continue
			}
		}

		// push in reverse so the first child is popped first
		for child := current.LastChild; child != nil; child = child.PrevSibling {
			stack = append(stack, child)
		}
	}
	return out.String()
}

var runsOfSpace = regexp.MustCompile(`\s{2,}`)

func printableOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// CleanText trims a piece of scraped text and collapses its inner whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(printableOnly(s))
	return runsOfSpace.ReplaceAllString(s, " ")
}

// SelectionText returns the cleaned text of the first node in sel, or
// fallback when sel is empty or only contains whitespace.
func SelectionText(sel *goquery.Selection, fallback string) string {
	if sel.Length() == 0 {
		return fallback
	}
	text := CleanText(NodeText(sel.Nodes[0]))
	if text == "" {
		return fallback
	}
	return text
}

// Attr returns the named attribute of the first node in sel, or fallback.
func Attr(sel *goquery.Selection, name, fallback string) string {
	value, ok := sel.First().Attr(name)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
