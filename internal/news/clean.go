package news

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanHeadline strips markup and entities from a headline and collapses
// whitespace. Feeds often deliver titles as HTML fragments.
func CleanHeadline(s string) string {
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
