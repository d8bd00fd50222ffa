package dgii_test

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/rnc-cli/internal/dgii"
	"github.com/sells-group/rnc-cli/internal/rnc"
)

// lineExtractor reads "id=value" lines. It stands in for any non-HTML
// parsing backend.
type lineExtractor struct{}

type linePage map[string]string

func (lineExtractor) Parse(body []byte) (dgii.Page, error) {
	page := linePage{}
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		if id, v, ok := strings.Cut(sc.Text(), "="); ok {
			page[id] = v
		}
	}
	return page, sc.Err()
}

func (p linePage) Field(id string) (string, bool) {
	v, ok := p[id]
	return v, ok
}

func TestResolve_CustomExtractor(t *testing.T) {
	states := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte("__VIEWSTATE=vs\n__VIEWSTATEGENERATOR=gen\n__EVENTVALIDATION=ev\n")) //nolint:errcheck
			return
		}
		_ = r.ParseForm()
		states <- r.PostForm.Get("__VIEWSTATE")
		w.Write([]byte("lblNombre=ACME SRL\nlblEstado=ACTIVO\n")) //nolint:errcheck
	}))
	defer srv.Close()

	c := dgii.New(dgii.Options{BaseURL: srv.URL, Extractor: lineExtractor{}})
	rec, err := c.Resolve(context.Background(), "00110344256")
	require.NoError(t, err)
	assert.Equal(t, "ACME SRL", rec.Name)
	assert.Equal(t, "ACTIVO", rec.Status)
	assert.Equal(t, rnc.SourceRemote, rec.Source)
	assert.Equal(t, "vs", <-states)
}

func TestResolve_CustomExtractorMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("__VIEWSTATE=vs\n")) //nolint:errcheck
	}))
	defer srv.Close()

	c := dgii.New(dgii.Options{BaseURL: srv.URL, Extractor: lineExtractor{}})
	_, err := c.Resolve(context.Background(), "00110344256")
	assert.True(t, rnc.IsKind(err, rnc.KindTokenExtraction))
}
