package output

import (
	"testing"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestTruncateList(t *testing.T) {
	tests := []struct {
		name        string
		items       []int
		maxItems    int
		wantLen     int
		wantWarning bool
	}{
		{
			name:     "no truncation needed - empty",
			items:    []int{},
			maxItems: 15,
			wantLen:  0,
		},
		{
			name:     "no truncation needed - under limit",
			items:    makeItems(10),
			maxItems: 15,
			wantLen:  10,
		},
		{
			name:     "no truncation needed - at limit",
			items:    makeItems(15),
			maxItems: 15,
			wantLen:  15,
		},
		{
			name:        "truncation needed - over limit",
			items:       makeItems(25),
			maxItems:    15,
			wantLen:     15,
			wantWarning: true,
		},
		{
			name:        "uses default when maxItems is 0",
			items:       makeItems(100),
			maxItems:    0,
			wantLen:     DefaultMaxItems,
			wantWarning: true,
		},
		{
			name:        "uses default when maxItems is negative",
			items:       makeItems(100),
			maxItems:    -1,
			wantLen:     DefaultMaxItems,
			wantWarning: true,
		},
		{
			name:        "caps at absolute maximum",
			items:       makeItems(1500),
			maxItems:    2000,
			wantLen:     AbsoluteMaxItems,
			wantWarning: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, warning := TruncateList(tt.items, tt.maxItems)

			if len(result) != tt.wantLen {
				t.Errorf("TruncateList() len = %d, want %d", len(result), tt.wantLen)
			}
			if tt.wantWarning && warning == nil {
				t.Error("TruncateList() expected warning, got nil")
			}
			if !tt.wantWarning && warning != nil {
				t.Errorf("TruncateList() unexpected warning: %v", warning)
			}
			for i, v := range result {
				if v != i {
					t.Errorf("result[%d] = %d, order not preserved", i, v)
				}
			}
		})
	}
}

func TestTruncateListWarning(t *testing.T) {
	_, warning := TruncateList(makeItems(25), 15)
	if warning == nil {
		t.Fatal("expected warning")
	}

	if warning.Shown != 15 || warning.Total != 25 {
		t.Errorf("warning = %+v, want Shown=15 Total=25", warning)
	}
	want := "Showing 15 of 25 items on this page. Use pagination or filters to see more."
	if warning.Message != want {
		t.Errorf("Message = %q, want %q", warning.Message, want)
	}
}

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		name         string
		requestLimit int
		want         int
	}{
		{"unset", 0, DefaultMaxItems},
		{"negative", -5, DefaultMaxItems},
		{"within bounds", 50, 50},
		{"at absolute", AbsoluteMaxItems, AbsoluteMaxItems},
		{"over absolute", 5000, AbsoluteMaxItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EffectiveLimit(tt.requestLimit); got != tt.want {
				t.Errorf("EffectiveLimit(%d) = %d, want %d", tt.requestLimit, got, tt.want)
			}
		})
	}
}

func TestPageNote(t *testing.T) {
	tests := []struct {
		shown, total int
		want         string
	}{
		{0, 0, "Showing 0 of 0 items on this page."},
		{25, 25, "Showing 25 of 25 items on this page."},
		{15, 25, "Showing 15 of 25 items on this page. Use pagination or filters to see more."},
	}

	for _, tt := range tests {
		if got := PageNote(tt.shown, tt.total); got != tt.want {
			t.Errorf("PageNote(%d, %d) = %q, want %q", tt.shown, tt.total, got, tt.want)
		}
	}
}
