package extractor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/xhad/pdfsift/internal/models"
)

// linkPattern matches the four link forms carried in PDF text, each
// terminated at whitespace or a closing parenthesis.
var linkPattern = regexp.MustCompile(`mailto:[^\s)]+|ftp://[^\s)]+|file://[^\s)]+|https?://[^\s)]+`)

type Extractor struct {
	log *logrus.Logger
}

func New(log *logrus.Logger) *Extractor {
	return &Extractor{log: log}
}

// Extract returns every link found in the PDF at path: the union of the
// annotation pass (clickable URIs in the page tree) and the text pass (a
// pattern scan over extracted page text). The passes are fault-isolated from
// each other; whatever one pass collected survives a failure in the other,
// and a document neither pass can read yields an empty set.
func (e *Extractor) Extract(path string) models.StringSet {
	links := models.NewStringSet()

	data, err := os.ReadFile(path)
	if err != nil {
		e.log.WithError(err).WithField("file", path).Error("cannot read downloaded file")
		return links
	}
	if len(data) == 0 {
		e.log.WithField("file", path).Error("downloaded file is empty")
		return links
	}

	reader, err := newReader(data)
	if err != nil {
		e.log.WithError(err).WithField("file", path).Warn("pdf parse failed")
		return links
	}

	fromAnnotations, err := e.annotationLinks(reader)
	if err != nil {
		e.log.WithError(err).WithField("file", path).Warn("annotation pass failed")
	}
	links.Union(fromAnnotations)

	fromText, err := e.textLinks(reader)
	if err != nil {
		e.log.WithError(err).WithField("file", path).Warn("text pass failed")
	}
	links.Union(fromText)

	e.log.WithFields(logrus.Fields{
		"file":  path,
		"links": links.Len(),
	}).Debug("extraction complete")

	return links
}

// newReader parses the document structure. The library panics on malformed
// input, so parsing gets its own recover boundary.
func newReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf open panicked: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// annotationLinks walks every page's /Annots entries and collects the URI of
// each /A action that carries one. Links collected before a panic are kept.
func (e *Extractor) annotationLinks(r *pdf.Reader) (links models.StringSet, err error) {
	links = models.NewStringSet()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("annotation pass panicked: %v", rec)
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		annots := page.V.Key("Annots")
		if annots.Kind() != pdf.Array {
			continue
		}

		for j := 0; j < annots.Len(); j++ {
			uri := annots.Index(j).Key("A").Key("URI")
			if uri.Kind() == pdf.String {
				links.Add(uri.RawString())
			}
		}
	}

	return links, nil
}

// textLinks scans the concatenated text of all pages for bare links.
func (e *Extractor) textLinks(r *pdf.Reader) (links models.StringSet, err error) {
	links = models.NewStringSet()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("text pass panicked: %v", rec)
		}
	}()

	reader, err := r.GetPlainText()
	if err != nil {
		return links, err
	}

	text, err := io.ReadAll(reader)
	if err != nil {
		return links, err
	}

	for _, match := range linkPattern.FindAllString(string(text), -1) {
		links.Add(strings.TrimSpace(match))
	}

	return links, nil
}
