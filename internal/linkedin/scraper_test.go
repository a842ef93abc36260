package linkedin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDoc(t *testing.T) *goquery.Document {
	t.Helper()
	f, err := os.Open("testdata/profile.html")
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	return doc
}

func TestParseProfile(t *testing.T) {
	p, err := parseProfile(fixtureDoc(t))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", p.FullName)
	assert.Equal(t, "Founder & CEO at Acme Robotics", p.Headline)
	assert.Equal(t, "Austin, Texas, United States", p.Location)
	assert.Equal(t, "Building autonomous warehouse robots. Previously shipped fleet software at Initech.", p.About)

	require.Len(t, p.Experience, 2)
	assert.Equal(t, "CEO", p.Experience[0].Title)
	assert.Equal(t, "Acme Robotics", p.Experience[0].Company)
	assert.True(t, p.Experience[0].Current, "a 'Present' date range marks the current role")
	assert.Equal(t, "Engineering Manager", p.Experience[1].Title)
	assert.False(t, p.Experience[1].Current)

	require.Len(t, p.Education, 1)
	assert.Equal(t, "University of Texas at Austin", p.Education[0].School)
	assert.Equal(t, "BS, Computer Science", p.Education[0].Degree)

	company, title := p.CurrentCompany()
	assert.Equal(t, "Acme Robotics", company)
	assert.Equal(t, "CEO", title)
	assert.Equal(t, "Jane", p.FirstName())
}

func TestParseProfileMissingName(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		"<html><body><main><section data-section=\"summary\"><p>About text</p></section></main></body></html>",
	))
	require.NoError(t, err)

	_, err = parseProfile(doc)
	assert.ErrorIs(t, err, ErrProfileParse)
}

func TestScrapeProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/in/janedoe" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, "testdata/profile.html")
	}))
	defer ts.Close()

	sess, err := NewSession(Options{
		BaseURL:           ts.URL,
		RequestsPerMinute: 6000,
		Log:               discardLogger(),
	})
	require.NoError(t, err)

	sc := NewScraper(sess, discardLogger())
	p, err := sc.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/janedoe")
	require.NoError(t, err)

	assert.Equal(t, "https://www.linkedin.com/in/janedoe", p.LinkedInURL)
	assert.Equal(t, "Jane Doe", p.FullName)
	assert.False(t, p.ScrapedAt.IsZero())
}

func TestScrapeProfileAuthWall(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/in/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/authwall?trk=profile", http.StatusFound)
	})
	mux.HandleFunc("/authwall", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>Join LinkedIn</body></html>"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	sess, err := NewSession(Options{
		BaseURL:           ts.URL,
		RequestsPerMinute: 6000,
		Log:               discardLogger(),
	})
	require.NoError(t, err)

	sc := NewScraper(sess, discardLogger())
	_, err = sc.ScrapeProfile(context.Background(), "https://www.linkedin.com/in/janedoe")
	assert.ErrorIs(t, err, ErrAuthWall)
}
