// Package classifier resolves the category of an application from the cache,
// a remote language model, or the offline fallback rules.
package classifier

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jask/catswitch/internal/cache"
	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/llm"
	"github.com/jask/catswitch/internal/resilience"
)

// Result is a category together with where it came from.
type Result struct {
	Category category.Category
	Source   Source
}

// Request names one application to classify.
type Request struct {
	Name string
	ID   string
}

// Options configures a Classifier. Every field is optional.
type Options struct {
	Provider llm.Provider
	Breaker  *resilience.Breaker
	Metrics  *Metrics
	Logger   *zap.Logger
}

type providerHolder struct{ llm.Provider }

// Classifier applies the precedence cache, remote, fallback.
// It is safe for concurrent use.
type Classifier struct {
	cache    *cache.Cache
	provider atomic.Pointer[providerHolder]
	breaker  *resilience.Breaker
	metrics  *Metrics
	log      *zap.Logger
	inflight singleflight.Group
}

// New builds a Classifier over c.
func New(c *cache.Cache, opts Options) *Classifier {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cl := &Classifier{
		cache:   c,
		breaker: opts.Breaker,
		metrics: opts.Metrics,
		log:     log.Named("classifier"),
	}
	cl.SetProvider(opts.Provider)
	return cl
}

// SetProvider replaces the remote provider. Calls already in flight finish
// with the previous one.
func (c *Classifier) SetProvider(p llm.Provider) {
	if p == nil {
		p = llm.Disabled{}
	}
	c.provider.Store(&providerHolder{p})
	c.log.Info("remote provider set", zap.String("provider", p.Name()), zap.Bool("available", p.Available()))
}

// Provider returns the current remote provider.
func (c *Classifier) Provider() llm.Provider {
	return c.provider.Load().Provider
}

// Classify returns the category for the application. It never fails.
func (c *Classifier) Classify(ctx context.Context, name, id string) category.Category {
	return c.Resolve(ctx, name, id).Category
}

// Resolve is Classify that also reports the source of the category.
// Concurrent calls for the same id share one resolution, so an id is never
// sent to the remote twice at the same time.
func (c *Classifier) Resolve(ctx context.Context, name, id string) Result {
	if cat, ok := c.cache.Get(id); ok {
		c.metrics.classified(SourceCache)
		return Result{Category: cat, Source: SourceCache}
	}

	if ctx.Err() != nil {
		return c.abandoned(id)
	}

	// The flight outlives callers that give up; the provider timeout bounds it.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(id, func() (any, error) {
		// A flight that finished just before this one may have filled the cache.
		if cat, ok := c.cache.Get(id); ok {
			return Result{Category: cat, Source: SourceCache}, nil
		}
		return c.resolveUncached(flightCtx, name, id), nil
	})
	select {
	case r := <-ch:
		res := r.Val.(Result)
		c.metrics.classified(res.Source)
		return res
	case <-ctx.Done():
		return c.abandoned(id)
	}
}

// abandoned answers a caller whose context ended before a remote reply.
func (c *Classifier) abandoned(id string) Result {
	c.metrics.remoteFailed(reasonCanceled)
	c.metrics.classified(SourceFallback)
	return Result{Category: category.Fallback(id), Source: SourceFallback}
}

func (c *Classifier) resolveUncached(ctx context.Context, name, id string) Result {
	if cat, ok := c.remote(ctx, name, id); ok {
		return Result{Category: cat, Source: SourceRemote}
	}
	return Result{Category: category.Fallback(id), Source: SourceFallback}
}

// remote makes at most one call to the provider. Only an exact label match
// is accepted and cached.
func (c *Classifier) remote(ctx context.Context, name, id string) (category.Category, bool) {
	p := c.Provider()
	if !p.Available() {
		return 0, false
	}
	log := c.log.With(zap.String("app_id", id), zap.String("provider", p.Name()))

	if err := c.breaker.Allow(); err != nil {
		c.metrics.remoteFailed(reasonUnavailable)
		log.Debug("remote skipped", zap.Error(err))
		return 0, false
	}

	start := time.Now()
	reply, err := p.ClassifyApp(ctx, llm.NewClassifyRequest(category.Labels(), name, id))
	c.metrics.observeRemote(time.Since(start))
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		c.breaker.Cancel()
		c.metrics.remoteFailed(reasonCanceled)
		log.Debug("remote classification canceled", zap.Error(err))
		return 0, false
	}
	if err != nil {
		c.breaker.Done(false)
		c.metrics.remoteFailed(reasonTransport)
		log.Warn("remote classification failed", zap.Error(err))
		return 0, false
	}
	c.breaker.Done(true)

	label := strings.TrimSpace(reply)
	cat, ok := category.Parse(label)
	if !ok {
		c.metrics.remoteFailed(reasonUnrecognized)
		if ce := log.Check(zap.DebugLevel, "remote reply is not a category label"); ce != nil {
			ce.Write(zap.String("reply", label), zap.String("closest", closestLabel(label)))
		}
		return 0, false
	}

	if err := c.cache.Put(ctx, id, cat); err != nil {
		log.Error("cache write failed", zap.Error(err))
	}
	return cat, true
}

// closestLabel is the category label nearest to s by edit distance.
func closestLabel(s string) string {
	s = strings.ToLower(s)
	best, bestDist := "", -1
	for _, label := range category.Labels() {
		d := levenshtein.ComputeDistance(s, strings.ToLower(label))
		if bestDist < 0 || d < bestDist {
			best, bestDist = label, d
		}
	}
	return best
}

// ClassifyBatch classifies every distinct id in reqs concurrently and waits
// for all of them. When an id repeats, its first name is used.
func (c *Classifier) ClassifyBatch(ctx context.Context, reqs []Request) map[string]category.Category {
	distinct := make([]Request, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, r := range reqs {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		distinct = append(distinct, r)
	}

	results := make([]category.Category, len(distinct))
	var g errgroup.Group
	for i, r := range distinct {
		i, r := i, r
		g.Go(func() error {
			results[i] = c.Classify(ctx, r.Name, r.ID)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]category.Category, len(distinct))
	for i, r := range distinct {
		out[r.ID] = results[i]
	}
	c.log.Debug("batch classified", zap.Int("requested", len(reqs)), zap.Int("distinct", len(distinct)))
	return out
}
