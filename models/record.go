package models

// Row is one data row of a harvested table: trimmed cell texts in column
// order. An empty string marks an absent value.
type Row []string

// Header holds the column names of a harvested table, optionally extended
// with the enrichment columns.
type Header []string

// Locator identifies one page of a paginated source. Exactly one
// addressing scheme is active per harvest run: either URL was discovered
// by following a "next" anchor, or the page is addressed by Start/Length
// query parameters appended to a fixed base URL.
type Locator struct {
	URL    string
	Start  int
	Length int
	Total  int  // total entry count, known after the first offset page
	Offset bool // true when offset/length addressing is active
}

// Page is the parsed content of a single fetched page.
type Page struct {
	Header Header
	Rows   []Row
	Total  int // total entries parsed from the page summary, 0 if absent
}

// DetailRecord holds the supplementary fields extracted from one detail
// page. Empty fields mean the label was not found; the record is always
// usable regardless of how much was matched.
type DetailRecord struct {
	PracticeType string
	LicenceType  string
	LicenceNo    string
}

// DetailColumns is the fixed order in which enrichment fields extend a
// header and its rows.
var DetailColumns = []string{"Practice_Type", "Licence_Type", "Licence_No"}

// Fields returns the record values in DetailColumns order.
func (d DetailRecord) Fields() []string {
	return []string{d.PracticeType, d.LicenceType, d.LicenceNo}
}

// HarvestResult is the flattened outcome of one harvest run: an optional
// header plus all rows in page order.
type HarvestResult struct {
	Name   string // source name, becomes the sheet name on output
	Header Header
	Rows   []Row
}
