package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	docs "google.golang.org/api/docs/v1"
)

func paragraph(s string) *docs.StructuralElement {
	return &docs.StructuralElement{
		Paragraph: &docs.Paragraph{
			Elements: []*docs.ParagraphElement{{TextRun: &docs.TextRun{Content: s}}},
		},
	}
}

func TestDocumentText_Body(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{Content: []*docs.StructuralElement{
			paragraph("Submitted {Timestamp}\n"),
			{Table: &docs.Table{TableRows: []*docs.TableRow{{
				TableCells: []*docs.TableCell{
					{Content: []*docs.StructuralElement{paragraph("{Question1}")}},
					{Content: []*docs.StructuralElement{paragraph("{Question2}")}},
				},
			}}}},
		}},
	}

	assert.Equal(t, "Submitted {Timestamp}\n{Question1}\t{Question2}\t\n", DocumentText(doc))
}

func TestDocumentText_Tabs(t *testing.T) {
	doc := &docs.Document{
		Tabs: []*docs.Tab{{
			DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{paragraph("{Email}\n")}}},
			ChildTabs: []*docs.Tab{{
				DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: []*docs.StructuralElement{paragraph("{Question6}\n")}}},
			}},
		}},
	}

	assert.Equal(t, "{Email}\n{Question6}\n", DocumentText(doc))
	assert.Equal(t, "", DocumentText(nil))
}

func TestFindPlaceholders(t *testing.T) {
	got := FindPlaceholders("Dear {Email}, on {Timestamp} you said {Question1}. Again {Email}. {not valid} {1x} {}")
	assert.Equal(t, []string{"{Email}", "{Timestamp}", "{Question1}"}, got)
	assert.Empty(t, FindPlaceholders("no tokens here"))
}
