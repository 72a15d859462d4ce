package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/mcp-upgates/internal/instrumentation"
	"github.com/giantswarm/mcp-upgates/internal/logging"
	"github.com/giantswarm/mcp-upgates/internal/server"
	"github.com/giantswarm/mcp-upgates/internal/tools/output"
	"github.com/giantswarm/mcp-upgates/internal/upgates"
	"github.com/giantswarm/mcp-upgates/internal/validation"
)

// unknownTool is the metric label used for names outside the registry.
const unknownTool = "unknown"

// Options configure a Dispatcher.
type Options struct {
	// Readonly rejects every mutating operation.
	Readonly bool

	// Output controls anonymization and list optimization. Nil means
	// output.DefaultConfig.
	Output *output.Config

	// Redaction selects the keys anonymized in sensitive responses. Nil means
	// output.DefaultRedactionRule.
	Redaction *output.RedactionRule

	// Schemas validates parameters against each tool's input schema.
	// Optional.
	Schemas *validation.SchemaValidator

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics

	// Now is the clock used for computed defaults. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher runs tool invocations through the request pipeline:
// readonly gate, validation, request building, the upstream call,
// anonymization and list optimization.
type Dispatcher struct {
	registry  *Registry
	gateway   server.Gateway
	processor *output.Processor
	readonly  bool
	schemas   *validation.SchemaValidator
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher for the operations in registry.
func NewDispatcher(registry *Registry, gateway server.Gateway, opts Options) *Dispatcher {
	d := &Dispatcher{
		registry:  registry,
		gateway:   gateway,
		processor: output.NewProcessor(opts.Output, opts.Redaction),
		readonly:  opts.Readonly,
		schemas:   opts.Schemas,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d
}

// Registry returns the operations served by the dispatcher.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke runs the named tool with params and returns the post-processed
// response payload. Every error is an *upgates.Error.
func (d *Dispatcher) Invoke(ctx context.Context, name string, params map[string]any) (any, error) {
	start := time.Now()

	op, ok := d.registry.Lookup(name)
	if !ok {
		err := upgates.NewNotFoundError(fmt.Sprintf("Unknown tool: %s", name))
		d.metrics.RecordToolInvocation(ctx, unknownTool, logging.StatusError, err.Kind.Code(), time.Since(start))
		d.logger.Warn("unknown tool requested", logging.Operation(name))
		return nil, err
	}

	ctx, span := instrumentation.StartToolSpan(ctx, op.Name,
		instrumentation.NewSpanAttributeBuilder().WithMutating(op.Mutating).Build()...)
	defer span.End()

	logger := logging.WithTool(d.logger, op.Name)

	result, meta, err := d.run(ctx, op, params)
	duration := time.Since(start)

	if err != nil {
		e := upgates.AsError(err)
		kind := e.Kind.Code()
		span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithErrorKind(kind).Build()...)
		instrumentation.SetSpanError(span, e)
		d.metrics.RecordToolInvocation(ctx, op.Name, logging.StatusError, kind, duration)
		logger.Info("tool invocation failed",
			logging.ErrorKind(kind),
			logging.SanitizedErr(e),
			logging.Duration(duration),
		)
		return nil, e
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithPostProcessing(meta.Anonymized, meta.Optimized).Build()...)
	instrumentation.SetSpanSuccess(span)
	d.metrics.RecordToolInvocation(ctx, op.Name, logging.StatusSuccess, "", duration)
	if meta.Truncated {
		d.metrics.RecordItemsTruncated(ctx, meta.Entity, meta.OriginalCount-meta.FinalCount)
	}

	logger.Debug("tool invocation completed",
		logging.Duration(duration),
		slog.Bool("anonymized", meta.Anonymized),
		slog.Bool("optimized", meta.Optimized),
		slog.Int64("bytes_reduced", meta.BytesReduced),
	)
	return result, nil
}

func (d *Dispatcher) run(ctx context.Context, op *Operation, params map[string]any) (any, output.ProcessingMetadata, error) {
	var meta output.ProcessingMetadata

	if err := CheckReadonly(d.readonly, op); err != nil {
		return nil, meta, err
	}

	if err := validation.Validate(op.Rules, params); err != nil {
		return nil, meta, err
	}
	if d.schemas != nil {
		if err := d.schemas.Validate(op.Name, params); err != nil {
			return nil, meta, err
		}
	}

	req, err := BuildRequest(op, params, d.now())
	if err != nil {
		return nil, meta, err
	}

	resp, err := d.gateway.Do(ctx, req.Method, req.Path, req.Query, req.Body)
	if err != nil {
		return nil, meta, err
	}

	var data any
	if resp != nil {
		data = resp.Data
	}

	result, meta := d.processor.Process(data, op.Entity, op.Sensitive)
	return result, meta, nil
}
