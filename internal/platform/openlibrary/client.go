package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const booksPath = "/api/books?bibkeys=ISBN:%s&format=json&jscmd=data"

var (
	// ErrNotFound is returned when the provider has no data for an ISBN.
	ErrNotFound = errors.New("openlibrary: isbn not found")
	// ErrTransport covers network failures and unexpected HTTP statuses.
	ErrTransport = errors.New("openlibrary: transport failure")
	// ErrDecode is returned when the response body is not valid JSON.
	ErrDecode = errors.New("openlibrary: malformed response")
)

// Client talks to the Open Library books API. Each lookup is a single GET;
// there is no retry and no rate limiting.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient returns a client for baseURL (for example https://openlibrary.org).
// A nil httpClient means http.DefaultClient.
func NewClient(baseURL, userAgent string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// Named is an element of the subjects, authors and publishers arrays.
type Named struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Cover holds the cover image URLs.
type Cover struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// Document matches one entry of api/books?jscmd=data. Pointer fields
// distinguish an absent key from an empty value.
type Document struct {
	Title         string       `json:"title"`
	Subtitle      *string      `json:"subtitle,omitempty"`
	PublishDate   *string      `json:"publish_date,omitempty"`
	NumberOfPages *json.Number `json:"number_of_pages,omitempty"`
	Subjects      []Named      `json:"subjects,omitempty"`
	Authors       []Named      `json:"authors,omitempty"`
	Publishers    []Named      `json:"publishers,omitempty"`
	Cover         *Cover       `json:"cover,omitempty"`
}

// BibKey is the key the provider uses for an ISBN in its response.
func BibKey(isbn string) string {
	return "ISBN:" + isbn
}

// LookupISBN fetches the document for isbn.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (Document, error) {
	u := c.baseURL + fmt.Sprintf(booksPath, url.QueryEscape(isbn))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("%w: unexpected status code: %d", ErrTransport, resp.StatusCode)
	}

	var res map[string]Document
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	doc, ok := res[BibKey(isbn)]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}
