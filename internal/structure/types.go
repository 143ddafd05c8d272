// Package structure holds the document outline data model: flat TOC items as
// produced by extraction, the nested node tree, and the traversals that
// resolve page ranges, assemble the tree, and enrich it.
package structure

// TocItem is a flat table-of-contents entry in document reading order.
// Structure carries a dotted code ("1.2.3") when the hierarchy is known.
// Transient fields (PhysicalIndex, AppearStart) are consumed during tree
// assembly and never serialized into the final output.
type TocItem struct {
	Structure     string `json:"structure,omitempty"`
	Title         string `json:"title"`
	Page          int    `json:"page,omitempty"`
	PhysicalIndex int    `json:"physical_index,omitempty"`
	AppearStart   string `json:"appear_start,omitempty"`
	StartIndex    int    `json:"start_index,omitempty"`
	EndIndex      int    `json:"end_index,omitempty"`
}

// Node is a section in the document tree. A leaf omits the nodes field
// entirely in serialized form; absence, not an empty list, marks a leaf.
type Node struct {
	Title         string  `json:"title"`
	NodeID        string  `json:"node_id,omitempty"`
	StartIndex    int     `json:"start_index,omitempty"`
	EndIndex      int     `json:"end_index,omitempty"`
	Text          string  `json:"text,omitempty"`
	Summary       string  `json:"summary,omitempty"`
	PrefixSummary string  `json:"prefix_summary,omitempty"`
	Nodes         []*Node `json:"nodes,omitempty"`
}

// DocumentStructure is the final output value.
type DocumentStructure struct {
	DocName        string  `json:"doc_name"`
	DocDescription string  `json:"doc_description,omitempty"`
	Structure      []*Node `json:"structure"`
}
