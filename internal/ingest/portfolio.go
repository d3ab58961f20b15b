package ingest

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/groundhog-ai/groundhog/internal/store"
)

// resumeSections are the portfolio headers that delimit resume content.
var resumeSections = map[string]bool{
	"Work Experience": true,
	"Education":       true,
	"Skills":          true,
}

// extractResumeSections parses the portfolio page and returns one document
// per recognized h2/h3 section. Section content runs from the header to the
// next h2/h3 sibling.
func extractResumeSections(html, source string) ([]store.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse portfolio html: %w", err)
	}

	var docs []store.Document
	doc.Find("h2, h3").Each(func(_ int, header *goquery.Selection) {
		title := strings.TrimSpace(header.Text())
		if !resumeSections[title] {
			return
		}

		var parts []string
		for sib := header.Next(); sib.Length() > 0; sib = sib.Next() {
			name := goquery.NodeName(sib)
			if name == "h2" || name == "h3" {
				break
			}
			if text := normalizeSpace(sib.Text()); text != "" {
				parts = append(parts, text)
			}
		}

		content := strings.Join(parts, "\n")
		if strings.TrimSpace(content) == "" {
			return
		}
		docs = append(docs, store.Document{
			Content: content,
			Metadata: store.Metadata{
				Source:  source,
				Title:   title,
				Section: title,
			},
		})
	})

	return docs, nil
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
