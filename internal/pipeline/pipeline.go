// Package pipeline orchestrates one complete analysis: validate the
// URL, fetch and extract the page, gather external signals, reduce them
// to a report, and persist the result.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veracitylab/veracity/internal/cache"
	"github.com/veracitylab/veracity/internal/extract"
	"github.com/veracitylab/veracity/internal/fanout"
	"github.com/veracitylab/veracity/internal/history"
	"github.com/veracitylab/veracity/internal/llm"
	"github.com/veracitylab/veracity/internal/logging"
	"github.com/veracitylab/veracity/internal/model"
	"github.com/veracitylab/veracity/internal/score"
	"github.com/veracitylab/veracity/internal/source"
	"github.com/veracitylab/veracity/internal/validate"
	"github.com/veracitylab/veracity/internal/worker"
)

// ErrInvalidURL marks analysis failures caused by the input URL itself,
// as opposed to downstream trouble. The HTTP layer maps it to 400.
var ErrInvalidURL = errors.New("invalid url")

type urlValidator interface {
	Validate(ctx context.Context, rawURL string) (string, error)
}

type contentExtractor interface {
	Extract(ctx context.Context, rawURL string) (*extract.Content, error)
}

// Pipeline runs analyses. One instance serves all requests; it holds no
// per-request state.
type Pipeline struct {
	config      *model.Config
	validator   urlValidator
	extractor   contentExtractor
	coordinator *fanout.Coordinator
	engine      *score.Engine
	cache       cache.Cache // nil when caching is disabled
	store       *history.Store
	logger      logging.Logger
}

// New wires a pipeline from configuration. The returned pipeline owns
// the history store and must be closed.
func New(cfg *model.Config, logger logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			logger.Warn("content assessment provider disabled", logging.F("error", err.Error()))
		} else {
			provider = p
		}
	}

	adapters := []source.Adapter{
		source.NewThreatAdapter(cfg.Threat),
		source.NewFactCheckAdapter(cfg.FactCheck),
		source.NewAssessAdapter(provider, cfg.LLM),
	}

	var reportCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			reportCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			reportCache = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
	}

	var store *history.Store
	if cfg.History.Path != "" {
		s, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		store = s
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RatePerSecond, cfg.Concurrency.Burst)

	return &Pipeline{
		config:      cfg,
		validator:   validate.New(),
		extractor:   extract.NewExtractor(cfg.HTTP, limiter),
		coordinator: fanout.NewCoordinator(adapters, cfg.Fanout),
		engine:      score.NewEngine(cfg.Scoring),
		cache:       reportCache,
		store:       store,
		logger:      logger,
	}, nil
}

// Close releases resources held by the pipeline
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// History returns the report archive, or nil when history is disabled
func (p *Pipeline) History() *history.Store {
	return p.store
}

// Analyze runs the full pipeline for one URL
func (p *Pipeline) Analyze(ctx context.Context, rawURL string) (*model.Report, error) {
	canonical, err := p.validator.Validate(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	key := cache.ReportKey(canonical)
	if p.cache != nil {
		if data, ok := p.cache.Get(key); ok {
			var cached model.Report
			if err := json.Unmarshal(data, &cached); err == nil {
				p.logger.Debug("report served from cache", logging.F("url", canonical))
				return &cached, nil
			}
			_ = p.cache.Delete(key)
		}
	}

	input := source.Input{URL: canonical}
	content, err := p.extractor.Extract(ctx, canonical)
	if err != nil {
		// Extraction failure degrades the content-dependent sources but
		// never aborts the analysis; URL-only sources still run.
		p.logger.Warn("content extraction failed",
			logging.F("url", canonical), logging.F("error", err.Error()))
	} else if content.HasText() {
		input.Title = content.Title
		input.Text = extract.Truncate(content.Text, p.config.LLM.MaxContentChars)
		input.HasContent = true
	}

	signals := p.coordinator.Gather(ctx, input)

	report := p.engine.Score(signals)
	report.ID = uuid.NewString()
	report.URL = canonical
	report.AnalyzedAt = time.Now().UTC()

	p.logger.Info("analysis complete",
		logging.F("url", canonical),
		logging.F("score", report.VeracityScore),
		logging.F("verdict", string(report.Verdict)),
		logging.F("degraded", report.Degraded))

	if p.cache != nil {
		if data, err := json.Marshal(&report); err == nil {
			if err := p.cache.Set(key, data, p.config.Cache.MemoryTTL); err != nil {
				p.logger.Warn("report cache write failed", logging.F("error", err.Error()))
			}
		}
	}

	if p.store != nil {
		if err := p.store.Save(ctx, &report); err != nil {
			p.logger.Warn("history write failed", logging.F("error", err.Error()))
		}
	}

	return &report, nil
}
