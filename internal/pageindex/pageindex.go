// Package pageindex turns a paged document into a hierarchical structure
// tree. The pipeline locates a table of contents if one exists, maps its
// entries to physical pages, verifies and repairs the mapping against the
// page text, and falls back to generating the structure directly from page
// content when no usable TOC is found. The resulting tree is enriched with
// node IDs, page text, summaries and an optional document description.
package pageindex

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taewook486/PageIndex/internal/config"
	"github.com/taewook486/PageIndex/internal/pagesource"
	"github.com/taewook486/PageIndex/internal/providers"
	"github.com/taewook486/PageIndex/internal/structure"
)

const (
	// verifyAccuracyThreshold is the minimum share of TOC entries that must
	// verify against the page text before the TOC is trusted at all. Below
	// this the whole TOC is discarded in favor of content-based generation.
	verifyAccuracyThreshold = 0.6

	// maxFixAttempts bounds the verify-fix rounds for entries that failed
	// verification.
	maxFixAttempts = 3

	// maxContinueRetries bounds continuation turns when the model truncates
	// a response at its output limit.
	maxContinueRetries = 5
)

// Processor runs the structure pipeline against one model client.
type Processor struct {
	client providers.Client
	opts   config.Options
	logger *slog.Logger
}

// New returns a Processor. A nil logger falls back to slog.Default.
func New(client providers.Client, opts config.Options, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{client: client, opts: opts, logger: logger}
}

// ProcessPDF builds the structure tree for a paged document.
func (p *Processor) ProcessPDF(ctx context.Context, doc *pagesource.Document) (*structure.DocumentStructure, error) {
	total := doc.TotalPages()
	if total == 0 {
		return nil, fmt.Errorf("document %s has no pages", doc.Name)
	}
	p.logger.Info("processing document", "doc", doc.Name, "pages", total, "model", p.opts.Model)

	tocStart, tocEnd, err := p.findTocPages(ctx, doc)
	if err != nil {
		return nil, err
	}

	var items []*structure.TocItem
	if tocStart > 0 {
		p.logger.Info("table of contents detected", "start", tocStart, "end", tocEnd)
		items, err = p.structureFromToc(ctx, doc, tocStart, tocEnd)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		p.logger.Info("no usable table of contents, generating structure from page content", "doc", doc.Name)
		items, err = p.generateStructure(ctx, doc)
		if err != nil {
			return nil, err
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("could not derive any structure for %s", doc.Name)
	}

	items = structure.AddPrefaceIfNeeded(items)
	roots := structure.PostProcess(items, total)

	if err := p.enrichTree(ctx, roots, doc.PageText); err != nil {
		return nil, err
	}

	out := &structure.DocumentStructure{DocName: doc.Name, Structure: roots}
	if p.opts.AddDocDescription() {
		desc, err := p.generateDocDescription(ctx, roots)
		if err != nil {
			return nil, err
		}
		out.DocDescription = desc
	}
	return out, nil
}

// ProcessMarkdown enriches a heading tree parsed from Markdown. Markdown has
// no physical pages, so TOC discovery and page mapping do not apply; nodes
// already carry their body text.
func (p *Processor) ProcessMarkdown(ctx context.Context, md *pagesource.MarkdownDoc) (*structure.DocumentStructure, error) {
	if len(md.Roots) == 0 {
		return nil, fmt.Errorf("markdown document %s has no content", md.Name)
	}
	p.logger.Info("processing markdown document", "doc", md.Name, "model", p.opts.Model)

	if err := p.enrichTree(ctx, md.Roots, nil); err != nil {
		return nil, err
	}

	out := &structure.DocumentStructure{DocName: md.Name, Structure: md.Roots}
	if p.opts.AddDocDescription() {
		desc, err := p.generateDocDescription(ctx, md.Roots)
		if err != nil {
			return nil, err
		}
		out.DocDescription = desc
	}
	return out, nil
}
