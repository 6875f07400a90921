package harvester

import (
	"fmt"
	"reflect"
	"testing"

	"registry-harvester/models"
)

// stubFetcher serves canned bodies keyed by URL, recording call order.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) Get(url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	body, ok := s.pages[url]
	if !ok {
		return nil, fmt.Errorf("status code 404 for %s", url)
	}
	return []byte(body), nil
}

func tablePage(rows string, next string) string {
	pagination := ""
	if next != "" {
		pagination = fmt.Sprintf(`<div class="dataTables_paginate"><a href="%s">Next</a></div>`, next)
	}
	return fmt.Sprintf(`<html><body>
		<table>
			<tr><th>Name</th><th>Reg No</th></tr>
			%s
		</table>
		%s
	</body></html>`, rows, pagination)
}

func TestHarvestAll_SinglePage(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list": tablePage(`<tr><td>Jane</td><td>A1</td></tr><tr><td>John</td><td>B2</td></tr>`, ""),
	}}
	h := New(fetch, Options{})

	result := h.HarvestAll("Register", Seed("https://reg.test/list"))

	if !reflect.DeepEqual([]string(result.Header), []string{"Name", "Reg No"}) {
		t.Errorf("header = %v", result.Header)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	if len(fetch.calls) != 1 {
		t.Errorf("got %d fetches, want 1", len(fetch.calls))
	}
}

func TestHarvestAll_FollowsNext(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list":        tablePage(`<tr><td>Jane</td><td>A1</td></tr>`, "/list?page=2"),
		"https://reg.test/list?page=2": tablePage(`<tr><td>John</td><td>B2</td></tr>`, ""),
	}}
	h := New(fetch, Options{})

	result := h.HarvestAll("Register", Seed("https://reg.test/list"))

	if len(result.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(result.Rows))
	}
	// Page order is row order.
	if result.Rows[0][0] != "Jane" || result.Rows[1][0] != "John" {
		t.Errorf("rows out of order: %v", result.Rows)
	}
}

func TestHarvestAll_CyclicNextTerminates(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list?page=1": tablePage(`<tr><td>Jane</td><td>A1</td></tr>`, "/list?page=2"),
		"https://reg.test/list?page=2": tablePage(`<tr><td>John</td><td>B2</td></tr>`, "/list?page=1"),
	}}
	h := New(fetch, Options{})

	result := h.HarvestAll("Register", Seed("https://reg.test/list?page=1"))

	if len(result.Rows) != 2 {
		t.Errorf("got %d rows, want 2 (each page once)", len(result.Rows))
	}
	if len(fetch.calls) != 2 {
		t.Errorf("got %d fetches, want 2", len(fetch.calls))
	}
}

func TestHarvestAll_SelfReferentialNext(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list": tablePage(`<tr><td>Jane</td><td>A1</td></tr>`, "https://reg.test/list"),
	}}
	h := New(fetch, Options{})

	result := h.HarvestAll("Register", Seed("https://reg.test/list"))

	if len(result.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(result.Rows))
	}
	if len(fetch.calls) != 1 {
		t.Errorf("got %d fetches, want 1", len(fetch.calls))
	}
}

func TestHarvestAll_FetchFailureKeepsPartial(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list": tablePage(`<tr><td>Jane</td><td>A1</td></tr>`, "/list?page=2"),
		// page 2 missing: the stub answers with an error
	}}
	h := New(fetch, Options{})

	result := h.HarvestAll("Register", Seed("https://reg.test/list"))

	if len(result.Rows) != 1 {
		t.Errorf("got %d rows, want 1 (partial kept)", len(result.Rows))
	}
}

func TestHarvestAll_NoTableKeepsPartial(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list":        tablePage(`<tr><td>Jane</td><td>A1</td></tr>`, "/list?page=2"),
		"https://reg.test/list?page=2": `<html><body><p>temporarily unavailable</p></body></html>`,
	}}
	h := New(fetch, Options{})

	result := h.HarvestAll("Register", Seed("https://reg.test/list"))

	if len(result.Rows) != 1 {
		t.Errorf("got %d rows, want 1 (partial kept)", len(result.Rows))
	}
}

func offsetPage(rows string, withTotal bool) string {
	info := ""
	if withTotal {
		info = `<div class="dataTables_info">Showing 1 to 100 of 250 entries</div>`
	}
	return fmt.Sprintf(`<html><body>
		%s
		<table>
			<tr><th>Name</th><th>Licence No</th></tr>
			%s
		</table>
	</body></html>`, info, rows)
}

func TestHarvestAll_OffsetPagination(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list?length=100&register=pharmacists&start=0":   offsetPage(`<tr><td>Jane</td><td>P1</td></tr>`, true),
		"https://reg.test/list?length=100&register=pharmacists&start=100": offsetPage(`<tr><td>John</td><td>P2</td></tr>`, false),
		"https://reg.test/list?length=100&register=pharmacists&start=200": offsetPage(`<tr><td>Mary</td><td>P3</td></tr>`, false),
	}}
	h := New(fetch, Options{PageLength: 100})

	result := h.HarvestAll("Pharmacists", h.OffsetSeed("https://reg.test/list?register=pharmacists"))

	if len(fetch.calls) != 3 {
		t.Fatalf("got %d fetches, want 3: %v", len(fetch.calls), fetch.calls)
	}
	if len(result.Rows) != 3 {
		t.Errorf("got %d rows, want 3", len(result.Rows))
	}
	if result.Rows[2][0] != "Mary" {
		t.Errorf("last row = %v", result.Rows[2])
	}
}

func TestHarvestAll_OffsetWithoutTotalStopsAfterFirstPage(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list?length=100&register=pharmacists&start=0": offsetPage(`<tr><td>Jane</td><td>P1</td></tr>`, false),
	}}
	h := New(fetch, Options{PageLength: 100})

	result := h.HarvestAll("Pharmacists", h.OffsetSeed("https://reg.test/list?register=pharmacists"))

	if len(fetch.calls) != 1 {
		t.Errorf("got %d fetches, want 1", len(fetch.calls))
	}
	if len(result.Rows) != 1 {
		t.Errorf("got %d rows, want 1", len(result.Rows))
	}
}

func TestHarvestPage_Idempotent(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list": tablePage(`<tr><td>Jane</td><td>A1</td></tr>`, "/list?page=2"),
	}}
	h := New(fetch, Options{})

	first, firstNext, err := h.HarvestPage(Seed("https://reg.test/list"))
	if err != nil {
		t.Fatalf("HarvestPage() error = %v", err)
	}
	second, secondNext, err := h.HarvestPage(Seed("https://reg.test/list"))
	if err != nil {
		t.Fatalf("HarvestPage() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("pages differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(firstNext, secondNext) {
		t.Errorf("next locators differ: %+v vs %+v", firstNext, secondNext)
	}
}

func detailTable(rows string) string {
	return fmt.Sprintf(`<html><body><table>%s</table></body></html>`, rows)
}

func TestHarvestPage_DetailEnrichment(t *testing.T) {
	mainPage := `<html><body>
	<table>
		<tr><th>Name</th><th>Reg No</th><th>Action</th></tr>
		<tr><td>Jane</td><td>A1</td><td><a class="btn btn-info" href="/view?id=1">View</a></td></tr>
		<tr><td>John</td><td>B2</td><td>-</td></tr>
	</table>
	</body></html>`

	fetch := &stubFetcher{pages: map[string]string{
		"https://reg.test/list":      mainPage,
		"https://reg.test/view?id=1": detailTable(`<tr><th>License No.</th><td>PH-1234</td></tr>`),
	}}
	h := New(fetch, Options{Details: true})

	page, next, err := h.HarvestPage(Seed("https://reg.test/list"))
	if err != nil {
		t.Fatalf("HarvestPage() error = %v", err)
	}
	if next != nil {
		t.Errorf("next = %+v, want nil", next)
	}

	wantHeader := []string{"Name", "Reg No", "Practice_Type", "Licence_Type", "Licence_No"}
	if !reflect.DeepEqual([]string(page.Header), wantHeader) {
		t.Errorf("header = %v, want %v", page.Header, wantHeader)
	}

	if len(page.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(page.Rows))
	}
	if got := []string(page.Rows[0]); !reflect.DeepEqual(got, []string{"Jane", "A1", "", "", "PH-1234"}) {
		t.Errorf("enriched row = %v", got)
	}
	if got := []string(page.Rows[1]); !reflect.DeepEqual(got, []string{"John", "B2", "", "", ""}) {
		t.Errorf("padded row = %v", got)
	}

	// Arity invariant: every row matches the extended header.
	for i, row := range page.Rows {
		if len(row) != len(page.Header) {
			t.Errorf("row %d arity = %d, header arity = %d", i, len(row), len(page.Header))
		}
	}
}

func TestFetchDetail_BestEffort(t *testing.T) {
	fetch := &stubFetcher{pages: map[string]string{}}
	h := New(fetch, Options{Details: true})

	if got := h.FetchDetail("https://reg.test/view?id=404"); got != (models.DetailRecord{}) {
		t.Errorf("FetchDetail() = %+v, want all-absent record", got)
	}
}
