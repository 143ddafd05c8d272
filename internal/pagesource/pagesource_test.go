package pagesource

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
	if got := EstimateTokens("   \n\t  "); got != 0 {
		t.Errorf("whitespace-only = %d, want 0", got)
	}
	if got := EstimateTokens("hi"); got < 1 {
		t.Errorf("short text = %d, want >= 1", got)
	}
	longer := EstimateTokens("This is a longer text with multiple sentences and words.")
	if longer <= EstimateTokens("short") {
		t.Errorf("longer text should estimate more tokens, got %d", longer)
	}
}

func TestDocumentTextRange(t *testing.T) {
	doc := &Document{
		Name:  "sample",
		Pages: []Page{{Text: "one "}, {Text: "two "}, {Text: "three "}},
	}

	t.Run("inclusive range", func(t *testing.T) {
		if got := doc.TextRange(1, 2); got != "one two " {
			t.Errorf("TextRange(1,2) = %q", got)
		}
	})

	t.Run("range clamps to document", func(t *testing.T) {
		if got := doc.TextRange(2, 99); got != "two three " {
			t.Errorf("TextRange(2,99) = %q", got)
		}
	})

	t.Run("labeled wraps each page", func(t *testing.T) {
		got := doc.TextRangeLabeled(3, 3)
		want := "<physical_index_3>\nthree \n<physical_index_3>\n"
		if got != want {
			t.Errorf("TextRangeLabeled(3,3) = %q, want %q", got, want)
		}
	})

	t.Run("page text out of range", func(t *testing.T) {
		if got := doc.PageText(0); got != "" {
			t.Errorf("PageText(0) = %q, want empty", got)
		}
		if got := doc.PageText(4); got != "" {
			t.Errorf("PageText(4) = %q, want empty", got)
		}
	})
}

func TestParseMarkdown(t *testing.T) {
	src := []byte(`# Intro

Opening words.

## Background

Some history.

## Scope

What we cover.

# Method

How it works.
`)

	doc, err := ParseMarkdown(src, "guide.md")
	if err != nil {
		t.Fatalf("ParseMarkdown() error = %v", err)
	}
	if doc.Name != "guide" {
		t.Errorf("Name = %q, want guide", doc.Name)
	}
	if len(doc.Roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(doc.Roots))
	}

	intro := doc.Roots[0]
	if intro.Title != "Intro" || !strings.Contains(intro.Text, "Opening words.") {
		t.Errorf("Intro = %+v", intro)
	}
	if len(intro.Nodes) != 2 {
		t.Fatalf("Intro children = %d, want 2", len(intro.Nodes))
	}
	if intro.Nodes[0].Title != "Background" || intro.Nodes[1].Title != "Scope" {
		t.Errorf("children = %q, %q", intro.Nodes[0].Title, intro.Nodes[1].Title)
	}
	if doc.Roots[1].Title != "Method" || !strings.Contains(doc.Roots[1].Text, "How it works.") {
		t.Errorf("Method = %+v", doc.Roots[1])
	}
}

func TestParseMarkdownSkippedLevels(t *testing.T) {
	src := []byte("# Top\n\n### Deep\n\ntext\n\n## Middle\n\nmore\n")
	doc, err := ParseMarkdown(src, "levels.md")
	if err != nil {
		t.Fatalf("ParseMarkdown() error = %v", err)
	}

	top := doc.Roots[0]
	if len(top.Nodes) != 2 {
		t.Fatalf("Top children = %d, want 2 (Deep and Middle both nest under Top)", len(top.Nodes))
	}
	if top.Nodes[0].Title != "Deep" || top.Nodes[1].Title != "Middle" {
		t.Errorf("children = %q, %q", top.Nodes[0].Title, top.Nodes[1].Title)
	}
}

func TestParseMarkdownPreamble(t *testing.T) {
	src := []byte("Loose text before any heading.\n\n# First\n\nbody\n")
	doc, err := ParseMarkdown(src, "notes.md")
	if err != nil {
		t.Fatalf("ParseMarkdown() error = %v", err)
	}
	if len(doc.Roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(doc.Roots))
	}
	if doc.Roots[0].Title != "notes" || !strings.Contains(doc.Roots[0].Text, "Loose text") {
		t.Errorf("preamble root = %+v", doc.Roots[0])
	}
}
