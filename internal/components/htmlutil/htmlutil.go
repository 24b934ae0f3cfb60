package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// CleanText drops non-printable runes and collapses runs of whitespace.
func CleanText(s string) string {
	out := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			out.WriteRune(c)
		}
	}
	text := strings.TrimSpace(out.String())
	return innerWhitespace.ReplaceAllString(text, " ")
}

// Markdown converts an html fragment into markdown, plain text passes
// through unchanged. If the conversion fails the visible text of the
// fragment is returned instead.
func Markdown(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err == nil {
		return strings.TrimSpace(md)
	}

	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return CleanText(GetText(node))
}
