package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/apps"
	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/classifier"
	"github.com/jask/catswitch/internal/index"
)

// ErrStale is returned by Refresh when a newer refresh published first.
var ErrStale = errors.New("catalog: refresh superseded by a newer one")

// BatchClassifier classifies a whole snapshot and waits for every result.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, reqs []classifier.Request) map[string]category.Category
}

// CatalogService turns snapshots into published indexes.
type CatalogService struct {
	Source     apps.Source
	Classifier BatchClassifier
	// OnPublish, if set, is called after each new index is published.
	OnPublish func(*index.Index)

	log     *zap.Logger
	issued  atomic.Uint64
	current atomic.Pointer[index.Index]

	mu        sync.Mutex
	published uint64
}

// NewCatalogService starts with an empty index.
func NewCatalogService(src apps.Source, cl BatchClassifier, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &CatalogService{Source: src, Classifier: cl, log: log.Named("catalog")}
	s.current.Store(index.Empty())
	return s
}

// Current returns the latest published index. It is never nil.
func (s *CatalogService) Current() *index.Index {
	return s.current.Load()
}

// Refresh lists the running applications, classifies them all and
// publishes the resulting index. Refreshes may overlap; a refresh that
// completes after a newer one has published is dropped with ErrStale.
func (s *CatalogService) Refresh(ctx context.Context) (*index.Index, error) {
	gen := s.issued.Add(1)
	start := time.Now()

	running, err := s.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list running apps: %w", err)
	}

	running = uniqueByID(running)
	reqs := make([]classifier.Request, len(running))
	for i, a := range running {
		reqs[i] = classifier.Request{Name: a.Name, ID: a.ID}
	}
	cats := s.Classifier.ClassifyBatch(ctx, reqs)

	records := make([]index.Record, len(running))
	for i, a := range running {
		records[i] = index.Record{ID: a.ID, Name: a.Name, Icon: a.Icon, Category: cats[a.ID]}
	}
	idx := index.Build(records)

	s.mu.Lock()
	if gen < s.published {
		s.mu.Unlock()
		s.log.Debug("dropping stale refresh", zap.Uint64("generation", gen))
		return nil, ErrStale
	}
	s.published = gen
	s.current.Store(idx)
	s.mu.Unlock()

	s.log.Info("index published",
		zap.Uint64("generation", gen),
		zap.Int("apps", idx.Len()),
		zap.Int("categories", len(idx.Categories())),
		zap.Duration("took", time.Since(start)))
	if s.OnPublish != nil {
		s.OnPublish(idx)
	}
	return idx, nil
}

// uniqueByID keeps the first entry of each identifier.
func uniqueByID(running []apps.Running) []apps.Running {
	seen := make(map[string]struct{}, len(running))
	out := running[:0:0]
	for _, a := range running {
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}
