package structure

import "strings"

// parentCode drops the last dot-separated segment of a structure code.
// Returns "" when the code has a single segment or is empty.
func parentCode(code string) string {
	if code == "" {
		return ""
	}
	idx := strings.LastIndex(code, ".")
	if idx < 0 {
		return ""
	}
	return code[:idx]
}

// BuildTree converts coded items into a forest. Items are placed in input
// order: a node whose parent code has already been seen becomes that parent's
// last child; any other coded node becomes a root (input is assumed
// parent-before-child, matching reading order). Items without a structure
// code cannot be placed and are skipped, so a sequence with no codes yields
// an empty forest, the caller's signal to fall back to a flat list.
//
// Duplicate structure codes overwrite the earlier mapping (last write wins).
func BuildTree(items []*TocItem) []*Node {
	byCode := make(map[string]*Node, len(items))
	var roots []*Node

	for _, item := range items {
		if item.Structure == "" {
			continue
		}
		node := &Node{
			Title:      item.Title,
			StartIndex: item.StartIndex,
			EndIndex:   item.EndIndex,
		}
		byCode[item.Structure] = node

		if parent, ok := byCode[parentCode(item.Structure)]; ok {
			parent.Nodes = append(parent.Nodes, node)
		} else {
			roots = append(roots, node)
		}
	}

	return roots
}

// ResolvePageRanges assigns start/end physical page indices to each item.
// An item ends on the page before its successor when the successor starts
// at the top of a page; otherwise the boundary page is shared. The last
// item runs to totalPages.
func ResolvePageRanges(items []*TocItem, totalPages int) {
	for i, item := range items {
		item.StartIndex = item.PhysicalIndex
		if i < len(items)-1 {
			next := items[i+1]
			if next.AppearStart == "yes" {
				item.EndIndex = next.PhysicalIndex - 1
			} else {
				item.EndIndex = next.PhysicalIndex
			}
		} else {
			item.EndIndex = totalPages
		}
	}
}

// AddPrefaceIfNeeded inserts a synthetic "Preface" entry covering pages
// 1..(first entry's page - 1) when the first entry starts past page 1.
func AddPrefaceIfNeeded(items []*TocItem) []*TocItem {
	if len(items) == 0 {
		return items
	}
	if items[0].PhysicalIndex > 1 {
		preface := &TocItem{
			Structure:     "0",
			Title:         "Preface",
			PhysicalIndex: 1,
		}
		items = append([]*TocItem{preface}, items...)
	}
	return items
}

// PostProcess resolves page ranges and assembles the tree. When the builder
// produces no roots the items are returned as a flat list of leaf sections,
// with the builder-only transient fields already absent from Node.
func PostProcess(items []*TocItem, totalPages int) []*Node {
	ResolvePageRanges(items, totalPages)
	tree := BuildTree(items)
	if len(tree) > 0 {
		return tree
	}

	flat := make([]*Node, 0, len(items))
	for _, item := range items {
		flat = append(flat, &Node{
			Title:      item.Title,
			StartIndex: item.StartIndex,
			EndIndex:   item.EndIndex,
		})
	}
	return flat
}
