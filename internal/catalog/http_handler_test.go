package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookcatalog/internal/book"
	"bookcatalog/internal/platform/openlibrary"
)

const orwellResponse = `{"ISBN:0451526538": {
	"title": "1984",
	"authors": [{"name": "George Orwell", "url": "https://openlibrary.org/authors/OL118077A"}],
	"publishers": [{"name": "Signet Classic"}],
	"publish_date": "1961",
	"number_of_pages": 328,
	"cover": {"small": "http://x/s.jpg", "medium": "http://x/m.jpg", "large": "http://x/y.jpg"}
}}`

func search(t *testing.T, h *HTTPHandler, isbn string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/books/search?isbn="+isbn, nil)
	h.Search(w, r)
	return w
}

func TestHTTPHandler_Search_EndToEnd(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "ISBN:0451526538", r.URL.Query().Get("bibkeys"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(orwellResponse))
	}))
	defer server.Close()

	store := new(mockStore)
	store.On("GetByISBN", mock.Anything, "0451526538").Return(book.Book{}, book.ErrNotFound).Once()
	store.On("InsertOrGetByISBN", mock.Anything, mock.AnythingOfType("*book.Book")).
		Run(func(args mock.Arguments) { args.Get(1).(*book.Book).ID = 1 }).
		Return(true, nil).Once()

	client := openlibrary.NewClient(server.URL, "bookcatalog-test", server.Client())
	h := NewHTTPHandler(NewResolver(store, client, zap.NewNop()), zap.NewNop())

	w := search(t, h, "0451526538")

	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Data book.Book `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "George Orwell", resp.Data.Author)
	assert.Equal(t, "1984", resp.Data.Title)
	assert.Equal(t, "No specified", resp.Data.Subtitle)
	assert.Equal(t, 328, resp.Data.Pages)
	assert.Equal(t, "0451526538", resp.Data.ISBN)
	assert.Equal(t, "http://x/y.jpg", resp.Data.Image)
	assert.EqualValues(t, 1, calls.Load())
	store.AssertExpectations(t)
}

func TestHTTPHandler_Search(t *testing.T) {
	tests := []struct {
		name      string
		localErr  error
		lookupDoc openlibrary.Document
		lookupErr error
		wantCode  int
		wantBody  string
	}{
		{name: "found locally", wantCode: http.StatusOK},
		{name: "provider miss", localErr: book.ErrNotFound, lookupErr: openlibrary.ErrNotFound, wantCode: http.StatusNotFound, wantBody: "NOT_FOUND"},
		{name: "provider down", localErr: book.ErrNotFound, lookupErr: openlibrary.ErrTransport, wantCode: http.StatusBadGateway, wantBody: "EXTERNAL_LOOKUP_FAILED"},
		{name: "provider garbage", localErr: book.ErrNotFound, lookupErr: openlibrary.ErrDecode, wantCode: http.StatusBadGateway, wantBody: "EXTERNAL_LOOKUP_FAILED"},
		{name: "unmappable", localErr: book.ErrNotFound, lookupDoc: openlibrary.Document{Title: "x"}, wantCode: http.StatusInternalServerError, wantBody: "MAPPING_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, store, lookup := newResolver()
			store.On("GetByISBN", mock.Anything, "123456789X").Return(book.Book{ID: 9, ISBN: "123456789X"}, tt.localErr)
			lookup.On("LookupISBN", mock.Anything, "123456789X").Return(tt.lookupDoc, tt.lookupErr)

			w := search(t, NewHTTPHandler(resolver, zap.NewNop()), "123456789X")

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHTTPHandler_Search_MissingISBN(t *testing.T) {
	resolver, store, _ := newResolver()

	w := search(t, NewHTTPHandler(resolver, zap.NewNop()), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "GetByISBN", mock.Anything, mock.Anything)
}
