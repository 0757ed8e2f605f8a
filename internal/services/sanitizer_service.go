package services

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SanitizerService strips presentation markup from raw email bodies,
// leaving plain text suitable for extraction.
type SanitizerService struct{}

func NewSanitizerService() *SanitizerService {
	return &SanitizerService{}
}

// isInvisible reports characters that render as nothing but survive a plain
// text extraction: the Unicode format category (zero-width spaces and
// joiners, soft hyphen, direction marks, BOM) plus the combining grapheme
// joiner, which is a nonspacing mark rather than a format character.
func isInvisible(r rune) bool {
	return unicode.Is(unicode.Cf, r) || r == '\u034f'
}

// Clean converts a raw (possibly HTML) email body into collapsed plain text.
// Markup tags are removed, entities are decoded, invisible and control
// characters are dropped and whitespace runs become single spaces. Malformed
// markup degrades to a best-effort text rendering; Clean never fails.
func (s *SanitizerService) Clean(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	text := extractText(body)

	// Drop invisible and control characters without eating word boundaries
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isInvisible(r) {
			continue
		}
		if unicode.IsControl(r) {
			// Keep line structure as whitespace so words don't fuse
			if r == '\n' || r == '\r' || r == '\t' {
				b.WriteRune(' ')
			}
			continue
		}
		b.WriteRune(r)
	}

	// Collapse whitespace runs and trim
	return strings.Join(strings.Fields(b.String()), " ")
}

// extractText parses the body as HTML and returns its text content in
// document order, one space between text nodes so adjacent elements don't
// fuse into a single word. Non-content elements are removed entirely. The
// parser is lenient, so plain text and broken markup both come back as text.
func extractText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		// The html parser virtually never errors on string input, but if it
		// does the raw body is still better than nothing.
		return body
	}

	doc.Find("script, style, meta, link, noscript").Remove()

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range doc.Selection.Nodes {
		walk(node)
	}

	return b.String()
}
