package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orwellResponse = `{
  "ISBN:0451526538": {
    "title": "1984",
    "authors": [{"name": "George Orwell", "url": "https://openlibrary.org/authors/OL118077A"}],
    "publishers": [{"name": "Signet Classics"}],
    "subjects": [{"name": "Dystopias"}, {"name": "Totalitarianism"}],
    "publish_date": "1950",
    "number_of_pages": 328,
    "cover": {"large": "http://x/y.jpg"}
  }
}`

func TestClient_LookupISBN(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/books", r.URL.Path)
		gotQuery = r.URL.Query().Get("bibkeys")
		assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(orwellResponse))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "bookcatalog-test", srv.Client())
	doc, err := c.LookupISBN(context.Background(), "0451526538")
	require.NoError(t, err)

	assert.Equal(t, "ISBN:0451526538", gotQuery)
	assert.Equal(t, "1984", doc.Title)
	assert.Nil(t, doc.Subtitle)
	require.NotNil(t, doc.NumberOfPages)
	assert.Equal(t, "328", doc.NumberOfPages.String())
	require.NotNil(t, doc.Cover)
	assert.Equal(t, "http://x/y.jpg", doc.Cover.Large)
	require.Len(t, doc.Authors, 1)
	assert.Equal(t, "George Orwell", doc.Authors[0].Name)
}

func TestClient_LookupISBN_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", nil).LookupISBN(context.Background(), "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_LookupISBN_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ISBN:1": `))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", nil).LookupISBN(context.Background(), "1")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_LookupISBN_ServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", nil).LookupISBN(context.Background(), "1")
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, 1, calls, "lookups are never retried")
}

func TestClient_LookupISBN_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", nil).LookupISBN(context.Background(), "1")
	assert.ErrorIs(t, err, ErrTransport)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_LookupISBN_PagesAsString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ISBN:1": {"title": "T", "number_of_pages": "42"}}`))
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL, "", nil).LookupISBN(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, doc.NumberOfPages)
	assert.Equal(t, "42", doc.NumberOfPages.String())
}
