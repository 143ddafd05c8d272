package pageindex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taewook486/PageIndex/internal/jsonutil"
	"github.com/taewook486/PageIndex/internal/pagesource"
	"github.com/taewook486/PageIndex/internal/providers"
	"github.com/taewook486/PageIndex/internal/structure"
)

// findTocPages scans the opening pages for a table of contents and returns
// the 1-based physical range of the first contiguous run of TOC pages, or
// (0, 0) when none is detected. Only the first TocCheckPageNum pages are
// examined.
func (p *Processor) findTocPages(ctx context.Context, doc *pagesource.Document) (int, int, error) {
	limit := min(p.opts.TocCheckPageNum, doc.TotalPages())
	start, end := 0, 0
	for i := 1; i <= limit; i++ {
		resp, err := p.client.Chat(ctx, &providers.ChatRequest{
			Model:  p.opts.Model,
			Prompt: fmt.Sprintf(tocDetectPrompt, doc.PageText(i)),
		})
		if err != nil {
			return 0, 0, fmt.Errorf("toc detection on page %d: %w", i, err)
		}
		detected := yesNo(jsonutil.ExtractJSON(resp), "toc_detected")
		switch {
		case detected && start == 0:
			start, end = i, i
		case detected:
			end = i
		case start != 0:
			// The run ended; anything detected later would be a list of
			// figures or similar, not the TOC.
			return start, end, nil
		}
	}
	return start, end, nil
}

// structureFromToc runs the TOC path: extract, transform, map to physical
// pages, then verify and fix. Returns nil items when the TOC turned out
// unusable, which sends the caller down the content-based path.
func (p *Processor) structureFromToc(ctx context.Context, doc *pagesource.Document, tocStart, tocEnd int) ([]*structure.TocItem, error) {
	content, err := p.extractTocContent(ctx, doc, tocStart, tocEnd)
	if err != nil {
		return nil, err
	}

	items, pagesGiven, err := p.transformToc(ctx, content)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	if pagesGiven {
		err = p.applyPageOffset(ctx, doc, items, tocEnd)
	} else {
		err = p.matchPhysicalIndices(ctx, doc, items, tocEnd)
	}
	if err != nil {
		return nil, err
	}

	return p.verifyAndFix(ctx, doc, items)
}

// extractTocContent has the model transcribe the TOC pages. Responses cut
// off at the output limit are continued in the same conversation until the
// model finishes or the continuation budget runs out.
func (p *Processor) extractTocContent(ctx context.Context, doc *pagesource.Document, tocStart, tocEnd int) (string, error) {
	return p.chatComplete(ctx, fmt.Sprintf(tocExtractPrompt, doc.TextRange(tocStart, tocEnd)), tocContinuePrompt)
}

// chatComplete sends a prompt and stitches together continuation turns while
// the model keeps stopping at its output limit. continuePrompt names the task
// being continued so the model does not drift on long responses.
func (p *Processor) chatComplete(ctx context.Context, prompt, continuePrompt string) (string, error) {
	content, reason, err := p.client.ChatWithReason(ctx, &providers.ChatRequest{Model: p.opts.Model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	history := []providers.Message{
		{Role: "user", Content: prompt},
		{Role: "assistant", Content: content},
	}
	for retries := 0; reason == providers.ReasonMaxOutput; retries++ {
		if retries >= maxContinueRetries {
			return "", fmt.Errorf("response still truncated after %d continuations", maxContinueRetries)
		}
		p.logger.Warn("response truncated at output limit, continuing", "retry", retries+1)

		var more string
		more, reason, err = p.client.ChatWithReason(ctx, &providers.ChatRequest{
			Model:   p.opts.Model,
			Prompt:  continuePrompt,
			History: history,
		})
		if err != nil {
			return "", err
		}
		content += more
		history = append(history,
			providers.Message{Role: "user", Content: continuePrompt},
			providers.Message{Role: "assistant", Content: more},
		)
	}
	return content, nil
}

// transformToc converts transcribed TOC text into typed items and reports
// whether the TOC carried printed page numbers.
func (p *Processor) transformToc(ctx context.Context, content string) ([]*structure.TocItem, bool, error) {
	resp, err := p.client.Chat(ctx, &providers.ChatRequest{
		Model:  p.opts.Model,
		Prompt: fmt.Sprintf(tocTransformPrompt, content),
	})
	if err != nil {
		return nil, false, fmt.Errorf("toc transformation: %w", err)
	}

	obj := jsonutil.ExtractJSON(resp)
	raw, ok := obj["table_of_contents"]
	if !ok {
		return nil, false, fmt.Errorf("toc transformation returned no table_of_contents")
	}
	if err := validateTocItems(raw); err != nil {
		return nil, false, err
	}
	return itemsFromAny(raw), yesNo(obj, "page_index_given_in_toc"), nil
}

// applyPageOffset resolves the constant offset between printed page numbers
// and physical indices by locating a few probe entries in the pages after
// the TOC, then applies printed page + offset to every entry. Falls back to
// direct title matching when no probe can be located.
func (p *Processor) applyPageOffset(ctx context.Context, doc *pagesource.Document, items []*structure.TocItem, tocEnd int) error {
	var probe []*structure.TocItem
	for _, it := range items {
		if it.Page > 0 {
			probe = append(probe, it)
		}
		if len(probe) == 5 {
			break
		}
	}
	if len(probe) == 0 {
		return p.matchPhysicalIndices(ctx, doc, items, tocEnd)
	}

	total := doc.TotalPages()
	window := p.opts.MaxPageNumEachNode
	titles := make([]string, len(probe))
	for i, it := range probe {
		titles[i] = it.Title
	}

	for winStart := tocEnd + 1; winStart <= total; winStart += window {
		winEnd := min(winStart+window-1, total)
		found, err := p.matchTitles(ctx, doc, titles, winStart, winEnd)
		if err != nil {
			return err
		}

		votes := map[int]int{}
		for _, it := range probe {
			if phys, ok := found[it.Title]; ok {
				votes[phys-it.Page]++
			}
		}
		if len(votes) == 0 {
			continue
		}

		offset, best := 0, 0
		for o, n := range votes {
			if n > best {
				offset, best = o, n
			}
		}
		p.logger.Info("resolved printed page offset", "offset", offset, "votes", best)
		for _, it := range items {
			if it.Page > 0 {
				if phys := it.Page + offset; phys >= 1 && phys <= total {
					it.PhysicalIndex = phys
				}
			}
		}
		return nil
	}

	p.logger.Warn("could not resolve printed page offset, matching titles directly")
	return p.matchPhysicalIndices(ctx, doc, items, tocEnd)
}

// matchPhysicalIndices locates TOC entries by title, sweeping windows of
// pages after the TOC and asking the model which of the still-unresolved
// entries start there.
func (p *Processor) matchPhysicalIndices(ctx context.Context, doc *pagesource.Document, items []*structure.TocItem, tocEnd int) error {
	total := doc.TotalPages()
	window := p.opts.MaxPageNumEachNode

	for winStart := tocEnd + 1; winStart <= total; winStart += window {
		var unresolved []*structure.TocItem
		for _, it := range items {
			if it.PhysicalIndex == 0 {
				unresolved = append(unresolved, it)
			}
		}
		if len(unresolved) == 0 {
			return nil
		}

		titles := make([]string, len(unresolved))
		for i, it := range unresolved {
			titles[i] = it.Title
		}
		winEnd := min(winStart+window-1, total)
		found, err := p.matchTitles(ctx, doc, titles, winStart, winEnd)
		if err != nil {
			return err
		}
		for _, it := range unresolved {
			if phys, ok := found[it.Title]; ok {
				it.PhysicalIndex = phys
				// Entries can share a title; each match is consumed once.
				delete(found, it.Title)
			}
		}
	}
	return nil
}

// matchTitles asks the model which of the given titles start within the
// window and returns title to physical index for the ones it reports.
// Reported indices outside the window are discarded.
func (p *Processor) matchTitles(ctx context.Context, doc *pagesource.Document, titles []string, winStart, winEnd int) (map[string]int, error) {
	resp, err := p.client.Chat(ctx, &providers.ChatRequest{
		Model:  p.opts.Model,
		Prompt: fmt.Sprintf(tocMatchPrompt, "- "+strings.Join(titles, "\n- "), doc.TextRangeLabeled(winStart, winEnd)),
	})
	if err != nil {
		return nil, fmt.Errorf("matching titles in pages %d-%d: %w", winStart, winEnd, err)
	}

	out := map[string]int{}
	arr, _ := jsonutil.ExtractJSON(resp)["results"].([]any)
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		title := stringField(m, "title")
		phys, ok := physicalIndexToInt(m["physical_index"])
		if title != "" && ok && phys >= winStart && phys <= winEnd {
			out[title] = phys
		}
	}
	return out, nil
}

// verifyAndFix checks every mapped entry against its claimed page and
// repairs the ones that fail, up to maxFixAttempts rounds. A first-pass
// accuracy below the threshold discards the TOC entirely (nil items).
// Entries still unverified after the fix budget are dropped.
func (p *Processor) verifyAndFix(ctx context.Context, doc *pagesource.Document, items []*structure.TocItem) ([]*structure.TocItem, error) {
	for attempt := 0; ; attempt++ {
		accuracy, incorrect, err := p.verifyToc(ctx, doc, items)
		if err != nil {
			return nil, err
		}
		p.logger.Info("toc verification", "accuracy", accuracy, "incorrect", len(incorrect), "attempt", attempt)

		if attempt == 0 && accuracy < verifyAccuracyThreshold {
			p.logger.Warn("toc accuracy below threshold, discarding toc", "accuracy", accuracy)
			return nil, nil
		}
		if len(incorrect) == 0 {
			return items, nil
		}
		if attempt >= maxFixAttempts {
			p.logger.Warn("dropping unverifiable toc entries", "count", len(incorrect))
			return removeItems(items, incorrect), nil
		}

		if err := p.fixItems(ctx, doc, incorrect); err != nil {
			return nil, err
		}
	}
}

// verifyToc checks entries concurrently. An entry verifies when the model
// confirms its title starts on the claimed page; verified entries also get
// their appear_start flag recorded. Entries with no in-range physical index
// count as incorrect without a model call.
func (p *Processor) verifyToc(ctx context.Context, doc *pagesource.Document, items []*structure.TocItem) (float64, []*structure.TocItem, error) {
	total := doc.TotalPages()
	verified := make([]bool, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i, it := range items {
		if it.PhysicalIndex < 1 || it.PhysicalIndex > total {
			continue
		}
		g.Go(func() error {
			resp, err := p.client.Chat(gctx, &providers.ChatRequest{
				Model:  p.opts.Model,
				Prompt: fmt.Sprintf(tocVerifyPrompt, it.Title, doc.TextRangeLabeled(it.PhysicalIndex, it.PhysicalIndex)),
			})
			if err != nil {
				return fmt.Errorf("verifying %q on page %d: %w", it.Title, it.PhysicalIndex, err)
			}
			obj := jsonutil.ExtractJSON(resp)
			if yesNo(obj, "answer") {
				verified[i] = true
				if yesNo(obj, "appear_start") {
					it.AppearStart = "yes"
				} else {
					it.AppearStart = "no"
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	correct := 0
	var incorrect []*structure.TocItem
	for i, it := range items {
		if verified[i] {
			correct++
		} else {
			incorrect = append(incorrect, it)
		}
	}
	return float64(correct) / float64(len(items)), incorrect, nil
}

// fixItems searches a window of pages around each failed entry's claimed
// position for the true start page. Entries the model cannot place keep
// their old index and fail the next verification round.
func (p *Processor) fixItems(ctx context.Context, doc *pagesource.Document, items []*structure.TocItem) error {
	total := doc.TotalPages()
	window := p.opts.MaxPageNumEachNode

	g, gctx := errgroup.WithContext(ctx)
	for _, it := range items {
		g.Go(func() error {
			guess := it.PhysicalIndex
			if guess < 1 {
				guess = 1
			}
			winStart := max(1, guess-window/2)
			winEnd := min(winStart+window-1, total)

			resp, err := p.client.Chat(gctx, &providers.ChatRequest{
				Model:  p.opts.Model,
				Prompt: fmt.Sprintf(tocFixPrompt, it.Title, doc.TextRangeLabeled(winStart, winEnd)),
			})
			if err != nil {
				return fmt.Errorf("fixing %q: %w", it.Title, err)
			}
			if phys, ok := physicalIndexToInt(jsonutil.ExtractJSON(resp)["physical_index"]); ok && phys <= total {
				it.PhysicalIndex = phys
			}
			return nil
		})
	}
	return g.Wait()
}

// generateStructure builds TOC items directly from page content when no
// usable TOC exists. Pages are grouped under the per-node page and token
// caps; each group's prompt carries the tail of the items extracted so far
// so numbering continues across groups.
func (p *Processor) generateStructure(ctx context.Context, doc *pagesource.Document) ([]*structure.TocItem, error) {
	var items []*structure.TocItem
	for _, gr := range p.pageGroups(doc) {
		content, err := p.chatComplete(ctx, fmt.Sprintf(
			partStructurePrompt,
			doc.TextRangeLabeled(gr.start, gr.end),
			recentItemsJSON(items, 10),
		), structureContinuePrompt)
		if err != nil {
			return nil, fmt.Errorf("structure generation for pages %d-%d: %w", gr.start, gr.end, err)
		}

		raw, ok := jsonutil.ExtractJSON(content)["table_of_contents"]
		if !ok {
			return nil, fmt.Errorf("structure generation for pages %d-%d returned no table_of_contents", gr.start, gr.end)
		}
		if err := validateTocItems(raw); err != nil {
			return nil, fmt.Errorf("structure generation for pages %d-%d: %w", gr.start, gr.end, err)
		}
		for _, it := range itemsFromAny(raw) {
			if it.PhysicalIndex == 0 {
				p.logger.Warn("generated entry has no physical index, skipping", "title", it.Title)
				continue
			}
			items = append(items, it)
		}
	}
	return items, nil
}

type pageGroup struct {
	start, end int
}

// pageGroups splits the document into consecutive page runs, each holding at
// most MaxPageNumEachNode pages and MaxTokenNumEachNode estimated tokens.
// A single oversized page still forms its own group.
func (p *Processor) pageGroups(doc *pagesource.Document) []pageGroup {
	var groups []pageGroup
	start, tokens := 1, 0
	for i := 1; i <= doc.TotalPages(); i++ {
		pageTokens := doc.Pages[i-1].Tokens
		if i > start && (i-start >= p.opts.MaxPageNumEachNode || tokens+pageTokens > p.opts.MaxTokenNumEachNode) {
			groups = append(groups, pageGroup{start: start, end: i - 1})
			start, tokens = i, 0
		}
		tokens += pageTokens
	}
	return append(groups, pageGroup{start: start, end: doc.TotalPages()})
}

// recentItemsJSON renders the last n extracted items as JSON context for the
// next group's prompt.
func recentItemsJSON(items []*structure.TocItem, n int) string {
	if len(items) > n {
		items = items[len(items)-n:]
	}
	data, err := json.Marshal(items)
	if err != nil || len(items) == 0 {
		return "[]"
	}
	return string(data)
}

// removeItems returns items minus the given set, preserving order.
func removeItems(items, drop []*structure.TocItem) []*structure.TocItem {
	dropSet := make(map[*structure.TocItem]bool, len(drop))
	for _, it := range drop {
		dropSet[it] = true
	}
	out := items[:0:0]
	for _, it := range items {
		if !dropSet[it] {
			out = append(out, it)
		}
	}
	return out
}
