package fetcher

import (
	"fmt"
	"log"
	"time"

	"github.com/gocolly/colly/v2"
)

// DefaultUserAgent is sent on every request so the registries can
// identify the harvester.
const DefaultUserAgent = "Mozilla/5.0 (compatible; Scraper/1.0)"

// DefaultDelay is the unconditional pause between consecutive requests,
// a courtesy rate limit toward the remote servers.
const DefaultDelay = 1 * time.Second

// Client implements Fetcher using colly. Requests are issued one at a
// time; the collector's limit rule enforces the fixed delay between them.
type Client struct {
	collector *colly.Collector

	// set by the collector callbacks during a Get call
	body     []byte
	fetchErr error
}

// NewClient creates a Client with the given identifying User-Agent and
// inter-request delay. Zero values fall back to the defaults.
func NewClient(userAgent string, delay time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		// The harvester keeps its own visited-locator guard, so the
		// collector must not refuse repeated URLs.
		colly.AllowURLRevisit(),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       delay,
	})

	client := &Client{collector: c}

	c.OnResponse(func(r *colly.Response) {
		client.body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
		client.fetchErr = err
	})

	return client
}

// Get fetches a single URL synchronously and returns the response body.
// A transport failure or non-success status is returned as an error; the
// caller decides whether to keep partial results.
func (c *Client) Get(url string) ([]byte, error) {
	c.body = nil
	c.fetchErr = nil

	if err := c.collector.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to visit URL: %w", err)
	}
	c.collector.Wait()

	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	if c.body == nil {
		return nil, fmt.Errorf("empty response from %s", url)
	}
	return c.body, nil
}
