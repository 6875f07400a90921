package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"registry-harvester/models"

	"github.com/PuerkitoBio/goquery"
)

// TableRow is one data row of the main table plus the resolved detail
// link discovered in its last cell, when a detail selector was given.
type TableRow struct {
	Cells      models.Row
	DetailHref string
}

// PageData is everything extracted from one page of a paginated source.
type PageData struct {
	Header  models.Header
	Rows    []TableRow
	Total   int    // total entries from the page summary, 0 when absent
	NextURL string // absolute URL of the next page, "" when none found
}

// totalRe matches the entry count in summaries like
// "Showing 1 to 100 of 8,640 entries".
var totalRe = regexp.MustCompile(`of\s+([\d,]+)\s+entries`)

// ParsePage parses one page of markup. The first <table> provides the
// header (first row) and the data rows; rows without data cells are
// skipped as separators. When detailSelector is non-empty, the last cell
// of each row is scanned for a matching anchor and its href is resolved
// against pageURL. Absence of a table is an error so the harvest can
// stop and keep what it has.
func ParsePage(body []byte, pageURL string, detailSelector string) (*PageData, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page URL: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found on page")
	}

	page := &PageData{
		Total:   totalEntries(doc),
		NextURL: nextLink(doc, base),
	}

	rows := table.Find("tr")
	rows.Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				page.Header = append(page.Header, strings.TrimSpace(cell.Text()))
			})
			return
		}

		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		var tr TableRow
		cells.Each(func(_ int, cell *goquery.Selection) {
			tr.Cells = append(tr.Cells, strings.TrimSpace(cell.Text()))
		})

		if detailSelector != "" {
			link := cells.Last().Find(detailSelector).First()
			if href, ok := link.Attr("href"); ok {
				tr.DetailHref = resolveHref(base, href)
			}
		}

		page.Rows = append(page.Rows, tr)
	})

	return page, nil
}

// totalEntries extracts the total entry count from the table summary
// element. Returns 0 when the summary or the numeric pattern is missing.
func totalEntries(doc *goquery.Document) int {
	info := doc.Find("div.dataTables_info").First()
	if info.Length() == 0 {
		return 0
	}
	m := totalRe.FindStringSubmatch(strings.TrimSpace(info.Text()))
	if len(m) < 2 {
		return 0
	}
	total, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return total
}

// nextLink finds the next-page URL: first an anchor inside the
// pagination container whose text contains "next" and that is not
// disabled, then any anchor with rel="next". The href is resolved
// against the current page URL.
func nextLink(doc *goquery.Document, base *url.URL) string {
	var href string
	doc.Find("div.dataTables_paginate a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(a.Text()), "next") {
			return true
		}
		// First matching anchor decides; a disabled one means no next page
		// from the pagination container.
		if !hasClass(a, "disabled") {
			href, _ = a.Attr("href")
		}
		return false
	})

	if href == "" {
		href, _ = doc.Find("a[rel='next']").First().Attr("href")
	}
	if href == "" {
		return ""
	}
	return resolveHref(base, href)
}

func hasClass(s *goquery.Selection, class string) bool {
	for _, c := range strings.Fields(s.AttrOr("class", "")) {
		if c == class {
			return true
		}
	}
	return false
}

func resolveHref(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
