package content

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Sample Article</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <nav>Home | About | Contact</nav>
  <h1>Sample Article</h1>
  <p>First paragraph of the article.</p>
  <p>Second paragraph with <b>bold</b> text.</p>
  <aside>Related links</aside>
  <footer>Copyright 2026</footer>
</body>
</html>`

func TestFetchPage_ExtractsTitleAndText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		fmt.Fprint(w, samplePage)
	}))
	defer server.Close()

	page, err := FetchPage(context.Background(), server.URL, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "Sample Article", page.Title)
	assert.Contains(t, page.Text, "First paragraph of the article.")
	assert.Contains(t, page.Text, "bold")

	// Chrome and non-content elements are stripped.
	assert.NotContains(t, page.Text, "tracking")
	assert.NotContains(t, page.Text, "color: red")
	assert.NotContains(t, page.Text, "Home | About")
	assert.NotContains(t, page.Text, "Related links")
	assert.NotContains(t, page.Text, "Copyright")
}

func TestFetchPage_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := FetchPage(context.Background(), server.URL, time.Second)
	assert.ErrorContains(t, err, "status 404")
}

func TestFetchPage_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := FetchPage(context.Background(), server.URL, time.Second)
	assert.Error(t, err)
}

func TestExtractText_NoTitle(t *testing.T) {
	title, text, err := extractText("<html><body><p>just text</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Equal(t, "just text", text)
}
