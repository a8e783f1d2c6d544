package quran

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.alquran.cloud/v1"
	defaultEdition = "quran-uthmani"
	defaultTimeout = 15 * time.Second
)

// ErrSurahNotFound is returned when the API has no chapter with the
// requested number.
var ErrSurahNotFound = errors.New("quran: surah not found")

// Option is a functional option for configuring a [Client].
type Option func(*Client)

// WithBaseURL overrides the API base URL (e.g., for a self-hosted mirror).
// Default: the public alquran.cloud endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithEdition selects the text edition fetched from the API.
// Default: "quran-uthmani".
func WithEdition(edition string) Option {
	return func(c *Client) {
		c.edition = edition
	}
}

// WithHTTPClient replaces the underlying HTTP client. Useful in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client is a [Provider] backed by an alquran.cloud-compatible REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	edition string
	http    *http.Client
}

// Compile-time interface check.
var _ Provider = (*Client)(nil)

// NewClient creates a [Client] with the supplied options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		edition: defaultEdition,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// surahEnvelope is the JSON envelope the API wraps every response in.
type surahEnvelope struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Surah  `json:"data"`
}

// Surah fetches one chapter in the configured edition.
func (c *Client) Surah(ctx context.Context, number int) (Surah, error) {
	if number < 1 || number > 114 {
		return Surah{}, fmt.Errorf("%w: number %d out of range [1, 114]", ErrSurahNotFound, number)
	}

	url := fmt.Sprintf("%s/surah/%d/%s", c.baseURL, number, c.edition)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Surah{}, fmt.Errorf("quran: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Surah{}, fmt.Errorf("quran: fetch surah %d: %w", number, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Surah{}, fmt.Errorf("%w: number %d", ErrSurahNotFound, number)
	}
	if resp.StatusCode != http.StatusOK {
		return Surah{}, fmt.Errorf("quran: fetch surah %d: unexpected status %s", number, resp.Status)
	}

	var envelope surahEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Surah{}, fmt.Errorf("quran: decode surah %d: %w", number, err)
	}
	if envelope.Code != http.StatusOK {
		return Surah{}, fmt.Errorf("quran: fetch surah %d: api status %q", number, envelope.Status)
	}
	if len(envelope.Data.Ayahs) == 0 {
		return Surah{}, fmt.Errorf("quran: surah %d: response contains no ayahs", number)
	}

	return envelope.Data, nil
}
