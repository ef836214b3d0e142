// Package ecb fetches the European Central Bank euro foreign exchange
// reference rates and normalizes them into the engine's snapshot shape.
package ecb

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/fxmirror/fxmirror/internal/apperrors"
	"github.com/fxmirror/fxmirror/internal/core/domain"
	"github.com/fxmirror/fxmirror/internal/core/ports"
	"github.com/shopspring/decimal"
)

// DefaultFeedURL is the daily ECB reference rate document.
const DefaultFeedURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// DefaultTimeout bounds one fetch attempt end to end.
const DefaultTimeout = 10 * time.Second

// Options parameterise the feed client.
type Options struct {
	FeedURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client fetches rate snapshots over HTTP. Every failure mode (transport,
// non-2xx status, unparseable document) wraps apperrors.ErrUpstream so the
// reconciler can surface one retryable error class.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// NewClient builds a feed client, falling back to defaults for zero options.
func NewClient(opts Options) *Client {
	if opts.FeedURL == "" {
		opts.FeedURL = DefaultFeedURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		url:     opts.FeedURL,
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
	}
}

var _ ports.RateFeed = (*Client)(nil)

// envelope mirrors the eurofxref document: an outer Cube wrapping one dated
// Cube, which wraps one leaf Cube per currency. Namespaces are ignored.
type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Cube    struct {
		Dated []datedCube `xml:"Cube"`
	} `xml:"Cube"`
}

type datedCube struct {
	Time  string     `xml:"time,attr"`
	Rates []rateCube `xml:"Cube"`
}

type rateCube struct {
	Currency string `xml:"currency,attr"`
	Rate     string `xml:"rate,attr"`
}

// FetchSnapshot performs one GET of the feed document and returns the
// normalized snapshot for its single as-of date.
func (c *Client) FetchSnapshot(ctx context.Context) (domain.RateSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: build request: %v", apperrors.ErrUpstream, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: fetch %s: %v", apperrors.ErrUpstream, c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.RateSnapshot{}, fmt.Errorf("%w: feed returned status %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var doc envelope
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: decode feed document: %v", apperrors.ErrUpstream, err)
	}

	return normalize(doc)
}

func normalize(doc envelope) (domain.RateSnapshot, error) {
	if len(doc.Cube.Dated) == 0 {
		return domain.RateSnapshot{}, fmt.Errorf("%w: feed document has no dated rate set", apperrors.ErrUpstream)
	}

	dated := doc.Cube.Dated[0]
	asOf, err := time.Parse(domain.DateLayout, dated.Time)
	if err != nil {
		return domain.RateSnapshot{}, fmt.Errorf("%w: parse feed date %q: %v", apperrors.ErrUpstream, dated.Time, err)
	}

	rates := make(map[string]decimal.Decimal, len(dated.Rates))
	for _, r := range dated.Rates {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return domain.RateSnapshot{}, fmt.Errorf("%w: parse rate %q for %s: %v", apperrors.ErrUpstream, r.Rate, r.Currency, err)
		}
		rates[r.Currency] = rate
	}

	return domain.RateSnapshot{AsOf: asOf, Rates: rates}, nil
}
