package pagesource

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/taewook486/PageIndex/internal/structure"
)

// MarkdownDoc is a Markdown document parsed into a heading tree. Markdown
// has no physical pages, so nodes carry text directly and page ranges stay
// unset.
type MarkdownDoc struct {
	Name  string
	Roots []*structure.Node
}

// ParseMarkdown walks the goldmark AST and nests sections by heading level.
// Body text between headings attaches to the nearest enclosing section;
// text before the first heading attaches to a synthetic untitled root only
// when present.
func ParseMarkdown(src []byte, filename string) (*MarkdownDoc, error) {
	md := goldmark.New()
	docAST := md.Parser().Parse(text.NewReader(src))

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	type stackEntry struct {
		node  *structure.Node
		level int
	}

	// Root is level 0 so all headings nest under it.
	root := &structure.Node{}
	stack := []stackEntry{{node: root, level: 0}}

	var currentText bytes.Buffer

	flushText := func() {
		t := strings.TrimSpace(currentText.String())
		if t != "" {
			top := stack[len(stack)-1].node
			if top.Text != "" {
				top.Text += "\n\n" + t
			} else {
				top.Text = t
			}
		}
		currentText.Reset()
	}

	for n := docAST.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			flushText()

			newNode := &structure.Node{Title: string(heading.Text(src))}

			for len(stack) > 1 && stack[len(stack)-1].level >= heading.Level {
				stack = stack[:len(stack)-1]
			}
			parent := stack[len(stack)-1].node
			parent.Nodes = append(parent.Nodes, newNode)
			stack = append(stack, stackEntry{node: newNode, level: heading.Level})
			continue
		}

		if t := blockText(n, src); t != "" {
			if currentText.Len() > 0 {
				currentText.WriteString("\n\n")
			}
			currentText.WriteString(t)
		}
	}
	flushText()

	roots := root.Nodes
	if root.Text != "" {
		// Preamble before the first heading becomes its own leading section.
		roots = append([]*structure.Node{{Title: name, Text: root.Text}}, roots...)
	}

	return &MarkdownDoc{Name: sanitizeName(name), Roots: roots}, nil
}

// blockText collects the plain text of a non-heading block node.
func blockText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if txt, ok := node.(*ast.Text); ok {
			b.Write(txt.Segment.Value(src))
			if txt.SoftLineBreak() || txt.HardLineBreak() {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
