// Package pagesource extracts page text and heading structure from source
// documents. The rest of the pipeline only consumes (text, tokens) pairs and
// a total page count; nothing downstream touches the source files.
package pagesource

import (
	"fmt"
	"strings"
)

// Page is the text of one physical page with its estimated token count.
type Page struct {
	Text   string
	Tokens int
}

// Document is a loaded source document.
type Document struct {
	Name  string
	Pages []Page
}

// TotalPages returns the physical page count.
func (d *Document) TotalPages() int {
	return len(d.Pages)
}

// PageText returns the text of physical page i (1-based). Out-of-range
// indices return the empty string.
func (d *Document) PageText(i int) string {
	if i < 1 || i > len(d.Pages) {
		return ""
	}
	return d.Pages[i-1].Text
}

// TextRange concatenates the text of pages start..end inclusive (1-based).
func (d *Document) TextRange(start, end int) string {
	var b strings.Builder
	for i := start; i <= end && i <= len(d.Pages); i++ {
		if i < 1 {
			continue
		}
		b.WriteString(d.Pages[i-1].Text)
	}
	return b.String()
}

// TextRangeLabeled is TextRange with each page wrapped in a
// <physical_index_N> tag pair so the model can report page positions.
func (d *Document) TextRangeLabeled(start, end int) string {
	var b strings.Builder
	for i := start; i <= end && i <= len(d.Pages); i++ {
		if i < 1 {
			continue
		}
		fmt.Fprintf(&b, "<physical_index_%d>\n%s\n<physical_index_%d>\n", i, d.Pages[i-1].Text, i)
	}
	return b.String()
}

// sanitizeName replaces path separators so a document name is usable as a
// file name.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, "/", "-")
}
