package output

// Envelope keys of an optimized list payload.
const (
	KeyCurrentPage      = "current_page"
	KeyCurrentPageItems = "current_page_items"
	KeyNumberOfPages    = "number_of_pages"
	KeyNumberOfItems    = "number_of_items"
	KeyLimitedTo        = "mcp_limited_to"
	KeyNote             = "mcp_note"
)

// ListStats describes what Optimize did to a list payload.
type ListStats struct {
	Entity   string
	Total    int
	Retained int
}

// Dropped returns how many items were cut from the page.
func (s *ListStats) Dropped() int {
	if s == nil {
		return 0
	}
	return s.Total - s.Retained
}

// Optimize reduces a paginated list payload for entity to at most maxItems
// projected items. Payloads of unknown entities, and payloads that do not
// hold the entity's item array, are returned unchanged.
func Optimize(payload any, entity string, maxItems int) any {
	out, _ := OptimizeList(payload, entity, maxItems)
	return out
}

// OptimizeList is Optimize that also reports list statistics. Stats are nil
// when the payload was passed through.
func OptimizeList(payload any, entity string, maxItems int) (any, *ListStats) {
	profile, ok := LookupProfile(entity)
	if !ok {
		return payload, nil
	}
	data, ok := payload.(map[string]any)
	if !ok {
		return payload, nil
	}
	items, ok := data[profile.ArrayField].([]any)
	if !ok {
		return payload, nil
	}

	limit := EffectiveLimit(maxItems)
	retained, _ := TruncateList(items, limit)

	projected := make([]any, 0, len(retained))
	for _, item := range retained {
		if m, ok := item.(map[string]any); ok {
			projected = append(projected, profile.Project(m))
			continue
		}
		projected = append(projected, deepCopyValue(item))
	}

	optimized := map[string]any{
		KeyCurrentPage:      data[KeyCurrentPage],
		KeyNumberOfPages:    data[KeyNumberOfPages],
		KeyNumberOfItems:    data[KeyNumberOfItems],
		KeyLimitedTo:        limit,
		KeyNote:             PageNote(len(projected), len(items)),
		profile.ArrayField:  projected,
		KeyCurrentPageItems: len(projected),
	}

	return optimized, &ListStats{
		Entity:   entity,
		Total:    len(items),
		Retained: len(projected),
	}
}
