package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tcgmatch/internal/config"
	"github.com/JonMunkholm/tcgmatch/internal/logging"
)

// Conversion outcomes reported to the Recorder.
const (
	OutcomeSuccess     = "success"
	OutcomeInputError  = "input_error"
	OutcomeSystemError = "system_error"
	OutcomeRejected    = "rejected"
	OutcomeCanceled    = "canceled"
)

// Recorder receives conversion metrics.
type Recorder interface {
	ConversionFinished(outcome string, elapsed time.Duration)
	RowsProcessed(resolved, failed, aggregated int)
}

type nopRecorder struct{}

func (nopRecorder) ConversionFinished(string, time.Duration) {}
func (nopRecorder) RowsProcessed(int, int, int)              {}

// Service runs conversions: input decoding, the engine, export rendering and
// result retention. Separate Convert calls share only the read-only catalog.
type Service struct {
	engine  *Engine
	limiter *ConvertLimiter
	results *resultStore
	metrics Recorder
	cfg     config.ConvertConfig
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRecorder reports conversion metrics to r.
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.metrics = r }
}

// NewService creates a Service resolving against c.
func NewService(c Catalog, cfg config.ConvertConfig, opts ...ServiceOption) *Service {
	s := &Service{
		engine:  NewEngine(c),
		limiter: NewConvertLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		results: newResultStore(cfg.ResultTTL),
		metrics: nopRecorder{},
		cfg:     cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert turns a collection export into marketplace exports. Row-level
// problems are reported in the result; input-level problems return one of
// the Err* sentinels and catalog failures a *SystemError. The result is
// retained for later download until the configured TTL passes.
func (s *Service) Convert(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	start := time.Now()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.ConversionFinished(outcomeOf(err), time.Since(start))
		return nil, err
	}
	defer s.limiter.Release()

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	id := uuid.NewString()
	ctx = logging.WithConversion(ctx, id)
	log := logging.FromContext(ctx)

	res, err := s.convert(ctx, id, r, opts)
	elapsed := time.Since(start)
	s.metrics.ConversionFinished(outcomeOf(err), elapsed)
	if err != nil {
		log.Warn("conversion failed", "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}

	res.Duration = elapsed
	s.results.put(res)
	s.metrics.RowsProcessed(res.Summary.InputRows-res.Summary.ErrorCount, res.Summary.ErrorCount, res.Summary.AggregatedRows)

	log.Info("conversion completed",
		"layout", res.Layout,
		"input_rows", res.Summary.InputRows,
		"matched_rows", res.Summary.MatchedRows,
		"aggregated_rows", res.Summary.AggregatedRows,
		"errors", res.Summary.ErrorCount,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

func (s *Service) convert(ctx context.Context, id string, r io.Reader, opts Options) (*Result, error) {
	layout, err := ParseLayout(string(opts.Layout))
	if err != nil {
		return nil, err
	}

	data, err := ReadInput(r, s.cfg.MaxInputSize)
	if err != nil {
		return nil, err
	}
	rows, err := ParseRows(data)
	if err != nil {
		return nil, err
	}

	conv, err := s.engine.Run(ctx, rows)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:        id,
		Layout:    layout,
		CreatedAt: time.Now(),
	}
	if res.Output, err = RenderOutput(conv.Rows, layout); err != nil {
		return nil, err
	}
	if opts.IncludeFailures {
		if res.Failures, err = RenderFailures(conv.Failures); err != nil {
			return nil, err
		}
	}

	sample := opts.ErrorSample
	if sample <= 0 {
		sample = s.cfg.ErrorSample
	}
	res.Summary = Summarize(conv, sample)
	return res, nil
}

// Result returns a retained conversion by id.
func (s *Service) Result(id string) (*Result, error) {
	return s.results.get(id)
}

// RunJanitor prunes expired results every interval until ctx ends.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.results.prune(); n > 0 {
				logging.FromContext(ctx).Debug("pruned expired conversions", "count", n)
			}
		}
	}
}

// LimiterStatus reports conversion slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until running conversions finish or ctx ends.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func outcomeOf(err error) string {
	var sysErr *SystemError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrTooManyConversions):
		return OutcomeRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.As(err, &sysErr):
		return OutcomeSystemError
	case IsInputError(err):
		return OutcomeInputError
	default:
		return OutcomeSystemError
	}
}
