package dgii

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Extractor parses a response body into a Page. Implementations decide how
// HTML is parsed; the client only asks pages for fields by element id.
type Extractor interface {
	Parse(body []byte) (Page, error)
}

// Page is a parsed HTML response.
type Page interface {
	// Field returns the value attribute of an <input> with the given id, or
	// the trimmed text of any other element. ok is false when the element is
	// absent (or an input has no value attribute).
	Field(id string) (value string, ok bool)
}

// GoqueryExtractor implements Extractor on top of goquery.
type GoqueryExtractor struct{}

// Parse parses body as HTML.
func (GoqueryExtractor) Parse(body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "dgii: parse html")
	}
	return goqueryPage{doc: doc}, nil
}

type goqueryPage struct {
	doc *goquery.Document
}

// Field looks up the element by id attribute.
func (p goqueryPage) Field(id string) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	// Attribute selector: ASP.NET ids may contain characters that are not
	// valid in a #id selector.
	node := p.doc.Find(`[id="` + id + `"]`).First()
	if node.Length() == 0 {
		return "", false
	}
	if goquery.NodeName(node) == "input" {
		return node.Attr("value")
	}
	return strings.TrimSpace(node.Text()), true
}
