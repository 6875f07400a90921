package parser

import (
	"bytes"
	"strings"

	"registry-harvester/models"

	"github.com/PuerkitoBio/goquery"
)

// labelFields maps normalized label substrings to detail record fields,
// evaluated in order. Both British and American spellings appear on the
// registries.
var labelFields = []struct {
	substring string
	assign    func(*models.DetailRecord, string)
}{
	{"practice type", func(d *models.DetailRecord, v string) { d.PracticeType = v }},
	{"licence type", func(d *models.DetailRecord, v string) { d.LicenceType = v }},
	{"license type", func(d *models.DetailRecord, v string) { d.LicenceType = v }},
	{"licence no", func(d *models.DetailRecord, v string) { d.LicenceNo = v }},
	{"license no", func(d *models.DetailRecord, v string) { d.LicenceNo = v }},
}

// ParseDetail extracts the known supplementary fields from a detail
// page. It reads label/value pairs from the rows of the first table, or
// from two-div groups when the page has no table. Unmatched labels are
// ignored and missing fields stay empty; this never fails.
func ParseDetail(body []byte) models.DetailRecord {
	var rec models.DetailRecord

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return rec
	}

	table := doc.Find("table").First()
	if table.Length() > 0 {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("th, td")
			if cells.Length() < 2 {
				return
			}
			assignField(&rec, cells.Eq(0).Text(), cellValue(cells.Eq(1)))
		})
		return rec
	}

	// No table on the page: fall back to div groups where the first
	// child div is the label and the second the value.
	doc.Find("div").Each(func(_ int, group *goquery.Selection) {
		pair := group.ChildrenFiltered("div")
		if pair.Length() != 2 {
			return
		}
		// The label side must be a leaf, otherwise wrapper containers
		// around the real pairs would match too.
		if pair.Eq(0).Children().Length() > 0 {
			return
		}
		assignField(&rec, pair.Eq(0).Text(), cellValue(pair.Eq(1)))
	})

	return rec
}

func assignField(rec *models.DetailRecord, label, value string) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	for _, lf := range labelFields {
		if strings.Contains(normalized, lf.substring) {
			lf.assign(rec, value)
			return
		}
	}
}

// cellValue reads the value side of a label/value pair, preferring a
// form input's value attribute over the plain text.
func cellValue(s *goquery.Selection) string {
	if input := s.Find("input").First(); input.Length() > 0 {
		if v, ok := input.Attr("value"); ok {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(s.Text())
}
