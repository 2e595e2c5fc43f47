// Package catalog parses Project Gutenberg RDF metadata records into
// classification candidates.
package catalog

import (
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/openshelf/gutenlist/internal/model"
)

type rdfDocument struct {
	XMLName xml.Name  `xml:"RDF"`
	Ebook   *rdfEbook `xml:"http://www.gutenberg.org/2009/pgterms/ ebook"`
}

type rdfEbook struct {
	Title     string        `xml:"http://purl.org/dc/terms/ title"`
	Creators  []rdfCreator  `xml:"http://purl.org/dc/terms/ creator"`
	Languages []rdfLanguage `xml:"http://purl.org/dc/terms/ language"`
	Issued    string        `xml:"http://purl.org/dc/terms/ issued"`
	Date      string        `xml:"http://purl.org/dc/terms/ date"`
}

type rdfCreator struct {
	Agent rdfAgent `xml:"http://www.gutenberg.org/2009/pgterms/ agent"`
}

type rdfAgent struct {
	Name string `xml:"http://www.gutenberg.org/2009/pgterms/ name"`
}

type rdfLanguage struct {
	Value       string         `xml:",chardata"`
	Description rdfDescription `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# Description"`
}

type rdfDescription struct {
	Value string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# value"`
}

// IDFromPath derives the record id from an RDF file path: the filename stem
// with the "pg" prefix stripped.
func IDFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimPrefix(stem, "pg")
}

// Parse reads one raw RDF record and returns either a candidate or a
// rejection reason. Malformed input and non-English records are rejections,
// never errors: one bad record must not abort a batch.
func Parse(id string, r io.Reader) (*model.Candidate, model.RejectReason) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, model.RejectMalformed
	}

	var doc rdfDocument
	if err := decode(bytes.NewReader(raw), &doc); err != nil || doc.Ebook == nil {
		return nil, model.RejectMalformed
	}

	if !isEnglish(doc.Ebook.Languages) {
		return nil, model.RejectNonEnglish
	}

	cand := &model.Candidate{
		ID:          id,
		Title:       orSentinel(doc.Ebook.Title, model.UnknownTitle),
		Author:      model.UnknownAuthor,
		Year:        extractYear(dateField(doc.Ebook)),
		RightsTexts: collectRights(bytes.NewReader(raw)),
	}
	if len(doc.Ebook.Creators) > 0 {
		cand.Author = orSentinel(doc.Ebook.Creators[0].Agent.Name, model.UnknownAuthor)
	}
	return cand, ""
}

func decode(r io.Reader, v any) error {
	dec := newDecoder(r)
	if err := dec.Decode(v); err != nil {
		return eris.Wrap(err, "catalog: decode rdf")
	}
	return nil
}

// newDecoder builds an XML decoder that honors declared charsets.
func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "catalog: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}
	return dec
}

// isEnglish reports whether any language element resolves to "en". The value
// normally lives on a nested rdf:Description, with plain character data as a
// fallback for older catalog editions.
func isEnglish(langs []rdfLanguage) bool {
	for _, l := range langs {
		v := l.Description.Value
		if v == "" {
			v = l.Value
		}
		if strings.EqualFold(strings.TrimSpace(v), "en") {
			return true
		}
	}
	return false
}

// dateField prefers the issued element, falling back to the generic date.
func dateField(e *rdfEbook) string {
	if strings.TrimSpace(e.Issued) != "" {
		return e.Issued
	}
	return e.Date
}

var yearRe = regexp.MustCompile(`(?:^|[^0-9])([0-9]{4})(?:[^0-9]|$)`)

// extractYear finds the first run of exactly four digits in free-text date
// metadata. Absence of a year is not an error.
func extractYear(text string) *int {
	m := yearRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}

// collectRights gathers the text of every rights-bearing element, whatever
// its namespace. A second token pass keeps the main decode strict while the
// rights scan stays permissive.
func collectRights(r io.Reader) []string {
	dec := newDecoder(r)
	var texts []string
	var depth int
	var buf strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth > 0 {
				depth++
			} else if strings.EqualFold(t.Name.Local, "rights") {
				depth = 1
				buf.Reset()
			}
		case xml.CharData:
			if depth > 0 {
				buf.Write(t)
			}
		case xml.EndElement:
			if depth > 0 {
				depth--
				if depth == 0 {
					if s := strings.TrimSpace(buf.String()); s != "" {
						texts = append(texts, s)
					}
				}
			}
		}
	}
	return texts
}

func orSentinel(s, sentinel string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return sentinel
}
