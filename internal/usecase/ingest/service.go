// Package ingest loads a JSON Lines product feed into the search index.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/facetsearch/internal/domain/product"
)

// Config controls batching and parallelism.
type Config struct {
	IDField    string
	TitleField string
	BatchSize  int
	Workers    int
}

// Result summarises one run.
type Result struct {
	IndexCreated bool
	Processed    int64
	Skipped      int64
	Duration     time.Duration
}

// Service streams records from a reader into the catalog: reader -> batches -> N workers.
type Service struct {
	catalog Catalog
	cfg     Config
	logger  *zap.Logger
}

// New creates an ingest service.
func New(catalog Catalog, cfg Config, logger *zap.Logger) *Service {
	if cfg.IDField == "" {
		cfg.IDField = "id"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Service{catalog: catalog, cfg: cfg, logger: logger}
}

// Run ensures the index exists and loads every record of r.
// Invalid records are skipped and counted; a malformed stream stops the run.
func (s *Service) Run(ctx context.Context, r io.Reader) (Result, error) {
	start := time.Now()

	created, err := s.catalog.EnsureIndex(ctx)
	if err != nil {
		return Result{}, err
	}
	if created {
		s.logger.Info("Created search index")
	}

	var processed, skipped atomic.Int64
	batches := make(chan []product.Product, s.cfg.Workers*2)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(batches)
		return s.produce(gctx, r, batches, &skipped)
	})

	for range s.cfg.Workers {
		g.Go(func() error {
			for batch := range batches {
				if err := s.catalog.Put(gctx, batch); err != nil {
					return err
				}
				n := processed.Add(int64(len(batch)))
				s.logger.Debug("Batch written", zap.Int("size", len(batch)), zap.Int64("processed", n))
			}
			return nil
		})
	}

	err = g.Wait()
	res := Result{
		IndexCreated: created,
		Processed:    processed.Load(),
		Skipped:      skipped.Load(),
		Duration:     time.Since(start),
	}
	return res, err
}

func (s *Service) produce(ctx context.Context, r io.Reader, out chan<- []product.Product, skipped *atomic.Int64) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	batch := make([]product.Product, 0, s.cfg.BatchSize)
	send := func() error {
		if len(batch) == 0 {
			return nil
		}
		select {
		case out <- batch:
		case <-ctx.Done():
			return ctx.Err()
		}
		batch = make([]product.Product, 0, s.cfg.BatchSize)
		return nil
	}

	for line := 1; ; line++ {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("record %d: %w", line, err)
		}

		p, err := s.toProduct(rec)
		if err != nil {
			skipped.Add(1)
			s.logger.Warn("Skipping record", zap.Int("record", line), zap.Error(err))
			continue
		}

		batch = append(batch, p)
		if len(batch) >= s.cfg.BatchSize {
			if err := send(); err != nil {
				return err
			}
		}
	}
	return send()
}

// toProduct maps a flat JSON object onto a product. Nested values are rejected;
// hash fields and facet tags are scalar.
func (s *Service) toProduct(rec map[string]any) (product.Product, error) {
	var id, title string
	attrs := make(map[string]string, len(rec))

	for k, v := range rec {
		value, err := scalar(v)
		if err != nil {
			return product.Product{}, fmt.Errorf("field %q: %w", k, err)
		}
		switch k {
		case s.cfg.IDField:
			id = value
		case s.cfg.TitleField:
			title = value
		default:
			if value != "" {
				attrs[k] = value
			}
		}
	}
	return product.New(id, title, attrs)
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
