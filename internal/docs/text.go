package docs

import (
	"regexp"
	"strings"

	docs "google.golang.org/api/docs/v1"
)

var placeholderPattern = regexp.MustCompile(`\{[A-Za-z][A-Za-z0-9]*\}`)

// DocumentText extracts the plain text of a document. Tabbed documents are
// read tab by tab including child tabs; legacy documents from their body.
func DocumentText(doc *docs.Document) string {
	if doc == nil {
		return ""
	}

	var text strings.Builder
	if len(doc.Tabs) > 0 {
		extractTabsText(&text, doc.Tabs)
	} else if doc.Body != nil {
		for _, element := range doc.Body.Content {
			extractPlainText(&text, element)
		}
	}
	return text.String()
}

// FindPlaceholders returns the distinct {Token} markers in text, in order of
// first appearance.
func FindPlaceholders(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, token := range placeholderPattern.FindAllString(text, -1) {
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

func extractTabsText(text *strings.Builder, tabs []*docs.Tab) {
	for _, tab := range tabs {
		if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
			for _, element := range tab.DocumentTab.Body.Content {
				extractPlainText(text, element)
			}
		}
		extractTabsText(text, tab.ChildTabs)
	}
}

// extractPlainText extracts plain text from a structural element
func extractPlainText(text *strings.Builder, element *docs.StructuralElement) {
	if element.Paragraph != nil {
		extractParagraphText(text, element.Paragraph)
	} else if element.Table != nil {
		extractTableText(text, element.Table)
	}
}

func extractParagraphText(text *strings.Builder, para *docs.Paragraph) {
	if para == nil {
		return
	}
	for _, elem := range para.Elements {
		if elem.TextRun != nil {
			text.WriteString(elem.TextRun.Content)
		}
	}
}

func extractTableText(text *strings.Builder, table *docs.Table) {
	if table == nil {
		return
	}
	for _, row := range table.TableRows {
		for _, cell := range row.TableCells {
			for _, element := range cell.Content {
				extractPlainText(text, element)
			}
			text.WriteString("\t")
		}
		text.WriteString("\n")
	}
}
