package pageindex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taewook486/PageIndex/internal/providers"
	"github.com/taewook486/PageIndex/internal/structure"
)

// enrichTree applies the configured enrichment steps to a finished tree:
// node IDs, page text, and summaries. Text attached only to drive summary
// generation is stripped again afterwards. pageText may be nil when nodes
// already carry their text.
func (p *Processor) enrichTree(ctx context.Context, roots []*structure.Node, pageText structure.PageText) error {
	if p.opts.AddNodeID() {
		structure.AssignNodeIDs(roots)
	}
	if pageText != nil && (p.opts.AddNodeText() || p.opts.AddNodeSummary()) {
		structure.AttachText(roots, pageText)
	}
	if p.opts.AddNodeSummary() {
		if err := p.generateSummaries(ctx, roots); err != nil {
			return err
		}
	}
	if !p.opts.AddNodeText() {
		structure.RemoveText(roots)
	}
	return nil
}

// generateSummaries fans out one summary call per node with text. The fan-out
// is all-or-nothing: any failed node fails the whole enrichment, so a partial
// tree is never returned.
func (p *Processor) generateSummaries(ctx context.Context, roots []*structure.Node) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range structure.ToList(roots) {
		if n.Text == "" {
			continue
		}
		g.Go(func() error {
			resp, err := p.client.Chat(gctx, &providers.ChatRequest{
				Model:  p.opts.Model,
				Prompt: fmt.Sprintf(nodeSummaryPrompt, n.Text),
			})
			if err != nil {
				return fmt.Errorf("summary for %q: %w", n.Title, err)
			}
			n.Summary = strings.TrimSpace(resp)
			return nil
		})
	}
	return g.Wait()
}

// generateDocDescription produces the one-sentence document description from
// a text-free projection of the tree.
func (p *Processor) generateDocDescription(ctx context.Context, roots []*structure.Node) (string, error) {
	data, err := json.MarshalIndent(structure.DescriptionProjection(roots), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal structure projection: %w", err)
	}

	resp, err := p.client.Chat(ctx, &providers.ChatRequest{
		Model:  p.opts.Model,
		Prompt: fmt.Sprintf(docDescriptionPrompt, string(data)),
	})
	if err != nil {
		return "", fmt.Errorf("document description: %w", err)
	}
	return strings.TrimSpace(resp), nil
}
