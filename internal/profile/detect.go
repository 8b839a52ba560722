package profile

import (
	"errors"
	"os"
	"strings"

	rpdf "rsc.io/pdf"
)

// ErrUnknownJournal is returned by Detect when the first page carries none of
// the publisher markers known to the built-in profiles.
var ErrUnknownJournal = errors.New("journal not recognized from first-page text")

// journalMarkers maps lowercase first-page substrings to built-in profile
// names. Matching is ordered; first hit wins.
var journalMarkers = []struct {
	marker  string
	profile string
}{
	{"www.nature.com/scientificreports", "scientific-reports"},
	{"scientific reports", "scientific-reports"},
	{"supplementary information", "scientific-reports-si"},
}

// Detect identifies the journal by probing the first page's text and returns
// the matching compiled built-in profile. The probe uses a plain PDF text
// reader rather than the page renderer, so it stays cheap enough to run
// before any rasterization.
func Detect(pdfPath string) (*Profile, error) {
	text, err := firstPageText(pdfPath)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(text)
	for _, m := range journalMarkers {
		if strings.Contains(lower, m.marker) {
			return Get(m.profile)
		}
	}
	return nil, ErrUnknownJournal
}

func firstPageText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return "", err
	}
	doc, err := rpdf.NewReader(f, fi.Size())
	if err != nil {
		return "", err
	}
	if doc.NumPage() < 1 {
		return "", nil
	}
	var b strings.Builder
	for _, t := range doc.Page(1).Content().Text {
		b.WriteString(t.S)
		b.WriteByte(' ')
	}
	return b.String(), nil
}

// PageCount returns the number of pages, or 0 when the file cannot be read.
// Used for progress reporting before the renderer opens the document.
func PageCount(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return 0
	}
	doc, err := rpdf.NewReader(f, fi.Size())
	if err != nil {
		return 0
	}
	return doc.NumPage()
}
