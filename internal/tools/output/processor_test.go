package output

import (
	"reflect"
	"testing"
)

func TestNewProcessor(t *testing.T) {
	p := NewProcessor(nil, nil)
	if p == nil {
		t.Fatal("NewProcessor(nil, nil) returned nil")
	}
	if p.Config().MaxItems != DefaultMaxItems || !p.Config().Optimize || p.Config().Anonymize {
		t.Errorf("unexpected default config: %+v", p.Config())
	}
	if p.Rule() != DefaultRedactionRule() {
		t.Error("nil rule should use the default rule")
	}

	p = NewProcessor(&Config{MaxItems: 5000}, nil)
	if p.Config().MaxItems != AbsoluteMaxItems {
		t.Errorf("MaxItems = %d, want %d", p.Config().MaxItems, AbsoluteMaxItems)
	}
}

func TestProcessorProcess(t *testing.T) {
	tests := []struct {
		name          string
		config        *Config
		entity        string
		sensitive     bool
		wantAnonymize bool
		wantOptimize  bool
		wantItems     int
	}{
		{
			name:          "anonymize and optimize",
			config:        &Config{Anonymize: true, Optimize: true, MaxItems: 5},
			entity:        "orders",
			sensitive:     true,
			wantAnonymize: true,
			wantOptimize:  true,
			wantItems:     5,
		},
		{
			name:         "anonymization disabled",
			config:       &Config{Optimize: true, MaxItems: 5},
			entity:       "orders",
			sensitive:    true,
			wantOptimize: true,
			wantItems:    5,
		},
		{
			name:         "operation without personal data",
			config:       &Config{Anonymize: true, Optimize: true, MaxItems: 5},
			entity:       "orders",
			wantOptimize: true,
			wantItems:    5,
		},
		{
			name:          "optimization disabled",
			config:        &Config{Anonymize: true, MaxItems: 5},
			entity:        "orders",
			sensitive:     true,
			wantAnonymize: true,
			wantItems:     8,
		},
		{
			name:          "no entity",
			config:        &Config{Anonymize: true, Optimize: true, MaxItems: 5},
			sensitive:     true,
			wantAnonymize: true,
			wantItems:     8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcessor(tt.config, nil)
			page := ordersPage(8)

			got, meta := p.Process(page, tt.entity, tt.sensitive)

			if meta.Anonymized != tt.wantAnonymize {
				t.Errorf("Anonymized = %v, want %v", meta.Anonymized, tt.wantAnonymize)
			}
			if meta.Optimized != tt.wantOptimize {
				t.Errorf("Optimized = %v, want %v", meta.Optimized, tt.wantOptimize)
			}

			orders := got.(map[string]any)["orders"].([]any)
			if len(orders) != tt.wantItems {
				t.Errorf("len(orders) = %d, want %d", len(orders), tt.wantItems)
			}

			customer := orders[0].(map[string]any)["customer"].(map[string]any)
			email := customer["email"]
			if tt.wantAnonymize && email != AnonymizedValue {
				t.Errorf("email = %v, want anonymized", email)
			}
			if !tt.wantAnonymize && email != "jan@example.com" {
				t.Errorf("email = %v, want original", email)
			}

			if tt.wantOptimize {
				if meta.OriginalCount != 8 || meta.FinalCount != 5 || !meta.Truncated {
					t.Errorf("metadata = %+v, want 8 -> 5 truncated", meta)
				}
				if meta.BytesReduced <= 0 {
					t.Errorf("BytesReduced = %d, want > 0", meta.BytesReduced)
				}
			}
		})
	}
}

func TestProcessorPassThrough(t *testing.T) {
	p := NewProcessor(DefaultConfig(), nil)
	data := map[string]any{"languages": []any{"cs", "en"}}

	got, meta := p.Process(data, "", false)

	if !reflect.DeepEqual(got, data) {
		t.Errorf("Process() = %#v, want unchanged", got)
	}
	if meta.Anonymized || meta.Optimized || meta.Truncated {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestConfigValidateAndClone(t *testing.T) {
	cfg := &Config{MaxItems: -3}
	validated := cfg.Validate()
	if validated.MaxItems != DefaultMaxItems {
		t.Errorf("MaxItems = %d, want %d", validated.MaxItems, DefaultMaxItems)
	}
	if cfg.MaxItems != -3 {
		t.Error("Validate modified the receiver")
	}

	clone := validated.Clone()
	clone.MaxItems = 1
	if validated.MaxItems == 1 {
		t.Error("Clone shares state with the original")
	}

	var nilCfg *Config
	if nilCfg.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}
