package output

import (
	"fmt"
)

// TruncateList keeps the first maxItems elements of items in order and
// returns a warning when elements were dropped.
func TruncateList[T any](items []T, maxItems int) ([]T, *TruncationWarning) {
	maxItems = EffectiveLimit(maxItems)

	total := len(items)
	if total <= maxItems {
		return items, nil
	}

	return items[:maxItems], &TruncationWarning{
		Shown:   maxItems,
		Total:   total,
		Message: PageNote(maxItems, total),
	}
}

// PageNote describes how many of a page's total items are shown. A pagination
// hint is added when items were left out.
func PageNote(shown, total int) string {
	if shown < total {
		return fmt.Sprintf("Showing %d of %d items on this page. Use pagination or filters to see more.", shown, total)
	}
	return fmt.Sprintf("Showing %d of %d items on this page.", shown, total)
}

// EffectiveLimit calculates the item cap for a per-call request. Unset
// requests fall back to DefaultMaxItems and AbsoluteMaxItems always applies.
func EffectiveLimit(requestLimit int) int {
	if requestLimit <= 0 {
		return DefaultMaxItems
	}
	return min(requestLimit, AbsoluteMaxItems)
}
