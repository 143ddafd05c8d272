package pageindex

import (
	"strconv"
	"strings"

	"github.com/taewook486/PageIndex/internal/structure"
)

// physicalIndexToInt converts the model's physical index field to a page
// number. Models return it as a bare number, a numeric string, or an echo of
// the tag ("physical_index_12", "<physical_index_12>"). Returns false for
// anything else, including null.
func physicalIndexToInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return intIfPositive(int(x))
	case int:
		return intIfPositive(x)
	case string:
		s := strings.TrimSpace(x)
		s = strings.TrimPrefix(s, "<")
		s = strings.TrimSuffix(s, ">")
		s = strings.TrimPrefix(s, "physical_index_")
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return intIfPositive(n)
	default:
		return 0, false
	}
}

// pageToInt converts a printed page number field, which models return as a
// number or a numeric string.
func pageToInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return intIfPositive(int(x))
	case int:
		return intIfPositive(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return intIfPositive(n)
	default:
		return 0, false
	}
}

func intIfPositive(n int) (int, bool) {
	if n < 1 {
		return 0, false
	}
	return n, true
}

// stringField reads a string value out of a decoded JSON object, trimming
// surrounding whitespace.
func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// yesNo normalizes a yes/no answer field. Anything that is not exactly
// "yes" after lowercasing counts as no.
func yesNo(m map[string]any, key string) bool {
	return strings.EqualFold(stringField(m, key), "yes")
}

// itemsFromAny converts a decoded table_of_contents array into TOC items.
// Entries that are not objects or have an empty title are dropped.
func itemsFromAny(v any) []*structure.TocItem {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]*structure.TocItem, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		item := &structure.TocItem{
			Structure: stringField(m, "structure"),
			Title:     stringField(m, "title"),
		}
		if item.Title == "" {
			continue
		}
		if p, ok := pageToInt(m["page"]); ok {
			item.Page = p
		}
		if p, ok := physicalIndexToInt(m["physical_index"]); ok {
			item.PhysicalIndex = p
		}
		if s := stringField(m, "appear_start"); s == "yes" || s == "no" {
			item.AppearStart = s
		}
		items = append(items, item)
	}
	return items
}
