package harvester

import (
	"fmt"
	"log"
	"net/url"

	"registry-harvester/fetcher"
	"registry-harvester/models"
	"registry-harvester/parser"
)

// DefaultDetailSelector matches the per-row "view" anchors the
// registries use for their detail pages.
const DefaultDetailSelector = "a.btn.btn-info"

// DefaultPageLength is the page size requested from offset-paginated
// sources.
const DefaultPageLength = 100

// Options controls optional harvest behaviors.
type Options struct {
	// Details enables per-row detail page enrichment. The trailing
	// action column is dropped and the three enrichment columns are
	// appended instead, keeping row arity uniform.
	Details bool

	// DetailSelector locates the detail anchor in the last cell.
	// Empty means DefaultDetailSelector.
	DetailSelector string

	// PageLength is the page size for offset pagination. Zero means
	// DefaultPageLength.
	PageLength int
}

// Harvester walks a paginated table source page by page, collecting rows
// until no next page remains or a failure ends the run. All failures
// degrade to partial results; nothing here retries.
type Harvester struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// New creates a Harvester on top of the given fetcher.
func New(f fetcher.Fetcher, opts Options) *Harvester {
	if opts.DetailSelector == "" {
		opts.DetailSelector = DefaultDetailSelector
	}
	if opts.PageLength <= 0 {
		opts.PageLength = DefaultPageLength
	}
	return &Harvester{fetcher: f, opts: opts}
}

// Seed returns the starting locator for an anchor-paginated source.
func Seed(pageURL string) models.Locator {
	return models.Locator{URL: pageURL}
}

// OffsetSeed returns the starting locator for an offset-paginated
// source. pageURL is the fixed base; start/length are appended as query
// parameters on every fetch.
func (h *Harvester) OffsetSeed(pageURL string) models.Locator {
	return models.Locator{URL: pageURL, Start: 0, Length: h.opts.PageLength, Offset: true}
}

// HarvestPage fetches and parses a single page, returning its header and
// rows plus the locator of the following page, or nil when the run is
// complete. Fetch and parse failures are returned so the caller can stop
// and keep what was already collected.
func (h *Harvester) HarvestPage(loc models.Locator) (*models.Page, *models.Locator, error) {
	pageURL, err := h.pageURL(loc)
	if err != nil {
		return nil, nil, err
	}

	body, err := h.fetcher.Get(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}

	selector := ""
	if h.opts.Details {
		selector = h.opts.DetailSelector
	}

	parsed, err := parser.ParsePage(body, pageURL, selector)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	page := &models.Page{
		Header: h.extendHeader(parsed.Header),
		Total:  parsed.Total,
	}
	for _, tr := range parsed.Rows {
		page.Rows = append(page.Rows, h.buildRow(tr))
	}

	return page, h.nextLocator(loc, parsed, pageURL), nil
}

// buildRow produces the output row for one table row. With enrichment
// enabled the trailing action cell is removed whether or not it holds a
// detail link, and the detail fields are appended, absent ones empty.
func (h *Harvester) buildRow(tr parser.TableRow) models.Row {
	row := tr.Cells
	if !h.opts.Details {
		return row
	}

	if len(row) > 0 {
		row = row[:len(row)-1]
	}

	if tr.DetailHref != "" {
		rec := h.FetchDetail(tr.DetailHref)
		return append(row, rec.Fields()...)
	}
	return append(row, models.DetailRecord{}.Fields()...)
}

// extendHeader applies the same shape change to the header: drop the
// action column, append the enrichment column names.
func (h *Harvester) extendHeader(header models.Header) models.Header {
	if !h.opts.Details || len(header) == 0 {
		return header
	}
	extended := append(models.Header{}, header[:len(header)-1]...)
	return append(extended, models.DetailColumns...)
}

// FetchDetail fetches and parses one detail page. This is best-effort
// by design: any failure yields an all-absent record and the main row is
// kept.
func (h *Harvester) FetchDetail(detailURL string) models.DetailRecord {
	body, err := h.fetcher.Get(detailURL)
	if err != nil {
		log.Printf("[DETAIL] Error fetching detail page %s: %v\n", detailURL, err)
		return models.DetailRecord{}
	}
	return parser.ParseDetail(body)
}

// nextLocator determines where the following page lives, or nil when
// the run is complete.
func (h *Harvester) nextLocator(loc models.Locator, parsed *parser.PageData, currentURL string) *models.Locator {
	if loc.Offset {
		total := loc.Total
		if loc.Start == 0 {
			total = parsed.Total
			if total == 0 {
				log.Printf("[SCRAPE] Could not parse total entries; keeping first page only\n")
				return nil
			}
			log.Printf("[SCRAPE] Total entries found: %d\n", total)
		}
		next := loc
		next.Start += loc.Length
		next.Total = total
		if next.Start >= total {
			return nil
		}
		return &next
	}

	// A next link identical to the current page would loop forever.
	if parsed.NextURL == "" || parsed.NextURL == currentURL {
		return nil
	}
	next := models.Locator{URL: parsed.NextURL}
	return &next
}

// pageURL renders the locator into a fetchable URL. Offset locators get
// start/length appended to the base URL's query string.
func (h *Harvester) pageURL(loc models.Locator) (string, error) {
	if !loc.Offset {
		return loc.URL, nil
	}
	u, err := url.Parse(loc.URL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("start", fmt.Sprintf("%d", loc.Start))
	q.Set("length", fmt.Sprintf("%d", loc.Length))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// HarvestAll walks the source from the seed locator until no next page
// remains, a page fails, or a locator repeats. The header comes from the
// first successfully parsed page. Already-collected rows always survive
// an early stop.
func (h *Harvester) HarvestAll(name string, seed models.Locator) *models.HarvestResult {
	result := &models.HarvestResult{Name: name}
	visited := make(map[string]bool)

	loc := &seed
	for loc != nil {
		pageURL, err := h.pageURL(*loc)
		if err != nil {
			log.Printf("[SCRAPE] Error building page URL: %v\n", err)
			break
		}
		if visited[pageURL] {
			log.Printf("[SCRAPE] Already visited %s, stopping\n", pageURL)
			break
		}
		visited[pageURL] = true

		log.Printf("[SCRAPE] Scraping page: %s\n", pageURL)
		page, next, err := h.HarvestPage(*loc)
		if err != nil {
			log.Printf("[SCRAPE] %v\n", err)
			break
		}

		if result.Header == nil && len(page.Header) > 0 {
			result.Header = page.Header
		}
		result.Rows = append(result.Rows, page.Rows...)
		log.Printf("[SCRAPE] Fetched %d rows from %s\n", len(page.Rows), pageURL)

		loc = next
	}

	log.Printf("[SCRAPE] Total rows scraped for %q: %d\n", name, len(result.Rows))
	return result
}

// HarvestJSON fetches a machine-readable endpoint once and decodes the
// response into a result. Failures yield an empty result, logged.
func (h *Harvester) HarvestJSON(name, jsonURL string) *models.HarvestResult {
	result := &models.HarvestResult{Name: name}

	log.Printf("[FETCH] Fetching distribution data from: %s\n", jsonURL)
	body, err := h.fetcher.Get(jsonURL)
	if err != nil {
		log.Printf("[FETCH] Error fetching %s: %v\n", jsonURL, err)
		return result
	}

	header, rows, err := parser.ParseDistribution(body)
	if err != nil {
		log.Printf("[FETCH] Error decoding %s: %v\n", jsonURL, err)
		return result
	}

	result.Header = header
	result.Rows = rows
	return result
}
