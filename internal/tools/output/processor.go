package output

import (
	"time"
)

// Processor applies the configured response transformations. It is
// immutable and safe for concurrent use.
type Processor struct {
	config *Config
	rule   *RedactionRule
}

// NewProcessor creates a processor. A nil config uses DefaultConfig and a nil
// rule uses DefaultRedactionRule.
func NewProcessor(config *Config, rule *RedactionRule) *Processor {
	if config == nil {
		config = DefaultConfig()
	}
	if rule == nil {
		rule = DefaultRedactionRule()
	}
	return &Processor{
		config: config.Validate(),
		rule:   rule,
	}
}

// Config returns the processor's configuration.
func (p *Processor) Config() *Config {
	return p.config
}

// Rule returns the redaction rule used for anonymization.
func (p *Processor) Rule() *RedactionRule {
	return p.rule
}

// Process transforms data returned for one operation. sensitive marks
// operations whose responses carry personal data; they are anonymized when
// enabled. entity selects the list profile; an empty entity skips
// optimization. Anonymization always runs before optimization.
func (p *Processor) Process(data any, entity string, sensitive bool) (any, ProcessingMetadata) {
	meta := ProcessingMetadata{
		ProcessedAt: time.Now(),
		Entity:      entity,
	}

	processed := data

	if sensitive && p.config.Anonymize {
		processed = p.rule.Apply(processed)
		meta.Anonymized = true
	}

	if entity != "" && p.config.Optimize {
		before := EstimateSize(processed)
		optimized, stats := OptimizeList(processed, entity, p.config.MaxItems)
		if stats != nil {
			meta.Optimized = true
			meta.OriginalCount = stats.Total
			meta.FinalCount = stats.Retained
			meta.Truncated = stats.Dropped() > 0
			if saved := before - EstimateSize(optimized); saved > 0 {
				meta.BytesReduced = saved
			}
		}
		processed = optimized
	}

	return processed, meta
}
