package voice

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText reduces text that may carry HTML to what should be read aloud.
// Scripts and styles are dropped and whitespace is collapsed.
func PlainText(text string) (string, error) {
	if !strings.ContainsRune(text, '<') {
		return strings.Join(strings.Fields(text), " "), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("failed to parse narration text: %w", err)
	}
	doc.Find("script, style, iframe").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})
	// Keep list items and paragraphs from running into each other.
	doc.Find("li, p, br, h1, h2, h3").Each(func(i int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
