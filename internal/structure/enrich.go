package structure

import "fmt"

// AssignNodeIDs walks the forest pre-order (node before children, children in
// order) assigning 4-digit zero-padded sequential IDs starting at "0000".
func AssignNodeIDs(roots []*Node) {
	next := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		n.NodeID = fmt.Sprintf("%04d", next)
		next++
		for _, child := range n.Nodes {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
}

// ToList flattens the forest to a pre-order node list. The returned slice
// shares the tree's nodes; mutating an element mutates the tree.
func ToList(roots []*Node) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, child := range n.Nodes {
			walk(child)
		}
	}
	for _, root := range roots {
		walk(root)
	}
	return out
}

// LeafNodes returns the nodes with no children, pre-order.
func LeafNodes(roots []*Node) []*Node {
	var out []*Node
	for _, n := range ToList(roots) {
		if len(n.Nodes) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// PageText returns the text of a node's pages. pageText(i) must return the
// text of physical page i (1-based).
type PageText func(physicalIndex int) string

// AttachText fills each node's text from its resolved page range, pages
// start_index..end_index inclusive.
func AttachText(roots []*Node, pageText PageText) {
	for _, n := range ToList(roots) {
		n.Text = sliceText(n, pageText, false)
	}
}

// AttachTextWithLabels is AttachText with each page wrapped in a
// <physical_index_N> tag pair for downstream traceability.
func AttachTextWithLabels(roots []*Node, pageText PageText) {
	for _, n := range ToList(roots) {
		n.Text = sliceText(n, pageText, true)
	}
}

func sliceText(n *Node, pageText PageText, labeled bool) string {
	if n.StartIndex < 1 || n.EndIndex < n.StartIndex {
		return ""
	}
	var text string
	for i := n.StartIndex; i <= n.EndIndex; i++ {
		if labeled {
			text += fmt.Sprintf("<physical_index_%d>\n%s\n<physical_index_%d>\n", i, pageText(i), i)
		} else {
			text += pageText(i)
		}
	}
	return text
}

// RemoveText clears the text field across the whole forest. Used when node
// text was only attached to drive summary generation.
func RemoveText(roots []*Node) {
	for _, n := range ToList(roots) {
		n.Text = ""
	}
}

// DescriptionProjection returns a copy of the forest carrying only title,
// node_id, summary and prefix_summary, the text-free shape handed to the
// model for document-level description generation.
func DescriptionProjection(roots []*Node) []*Node {
	out := make([]*Node, 0, len(roots))
	for _, n := range roots {
		clean := &Node{
			Title:         n.Title,
			NodeID:        n.NodeID,
			Summary:       n.Summary,
			PrefixSummary: n.PrefixSummary,
		}
		if len(n.Nodes) > 0 {
			clean.Nodes = DescriptionProjection(n.Nodes)
		}
		out = append(out, clean)
	}
	return out
}
