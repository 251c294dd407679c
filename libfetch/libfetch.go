// Package libfetch implements multi-source artifact retrieval.
//
// Given an artifact identity and a set of configured sources, a [Libfetch]
// races one retrieval attempt per source and hands back the first success,
// cancelling the rest. Sources are thin collaborators behind the
// [fetchcore.Source] and [fetchcore.Fetcher] contracts; this package doesn't
// care how a source actually produces bytes.
package libfetch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/quay/zlog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fetchcore/fetchcore"
)

// Libfetch coordinates racing retrievals across a set of sources.
type Libfetch struct {
	options *Options
}

// New constructs a Libfetch instance.
func New(ctx context.Context, opts *Options) (*Libfetch, error) {
	ctx = zlog.ContextWithValues(ctx, "component", "libfetch/New")
	if opts == nil {
		opts = &Options{}
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = DefaultFetchConcurrency
	}
	l := &Libfetch{options: opts}
	zlog.Debug(ctx).
		Int("sources", len(opts.Sources)).
		Int("concurrency", opts.FetchConcurrency).
		Msg("libfetch initialized")
	return l, nil
}

// Fetch retrieves the artifact named by id from whichever source supplies it
// first.
//
// All sources are tried concurrently; the first successful retrieval wins and
// the others are cancelled. A nil srcs uses the sources configured in
// [Options]. The returned Result's Data is guaranteed to support seeking and
// is positioned at the start; the caller owns the Result and must close it.
//
// If ctx is cancelled the cancellation is returned as-is, in preference to
// waiting out the remaining sources. If every source is tried and none
// supplies the artifact, the error is [fetchcore.ErrNotFound].
func (l *Libfetch) Fetch(ctx context.Context, id fetchcore.Identity, srcs []fetchcore.Source) (*fetchcore.Result, error) {
	ctx, span := tracer.Start(ctx, "Libfetch.Fetch")
	defer span.End()
	if srcs == nil {
		srcs = l.options.Sources
	}
	ctx = zlog.ContextWithValues(ctx,
		"component", "libfetch/Libfetch.Fetch",
		"artifact", id.String(),
		"race_id", uuid.New().String())
	zlog.Info(ctx).
		Int("sources", len(srcs)).
		Msg("artifact fetch start")

	start := time.Now()
	res, err := l.fetchFromAny(ctx, id, srcs)
	success := strconv.FormatBool(err == nil)
	fetchCounter.WithLabelValues(success).Inc()
	fetchTimer.WithLabelValues(success).Observe(time.Since(start).Seconds())
	if err != nil {
		zlog.Info(ctx).Err(err).Msg("artifact fetch failed")
		return nil, err
	}
	zlog.Info(ctx).
		Str("source", res.Source).
		Msg("artifact fetch ok")
	return res, nil
}

// FetchAll retrieves every named artifact, racing the sources independently
// for each one.
//
// At most [Options.FetchConcurrency] artifacts are in flight at once. On
// success the returned slice is parallel to ids. On error, any results
// already retrieved are closed and only the error is returned.
func (l *Libfetch) FetchAll(ctx context.Context, ids []fetchcore.Identity, srcs []fetchcore.Source) ([]*fetchcore.Result, error) {
	ctx = zlog.ContextWithValues(ctx, "component", "libfetch/Libfetch.FetchAll")
	results := make([]*fetchcore.Result, len(ids))
	sem := semaphore.NewWeighted(int64(l.options.FetchConcurrency))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			res, err := l.Fetch(gctx, id, srcs)
			if err != nil {
				return fmt.Errorf("fetching %v: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, res := range results {
			if res == nil {
				continue
			}
			if cerr := res.Close(); cerr != nil {
				zlog.Warn(ctx).Err(cerr).Msg("unable to close abandoned result")
			}
		}
		return nil, err
	}
	return results, nil
}
