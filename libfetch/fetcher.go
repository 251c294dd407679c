package libfetch

import (
	"context"
	"fmt"

	"github.com/quay/zlog"

	"github.com/fetchcore/fetchcore"
	"github.com/fetchcore/fetchcore/internal/stream"
)

// Report is one attempt's terminal state.
type report struct {
	src fetchcore.Source
	res *fetchcore.Result
	err error
}

// FetchFromAny launches one retrieval attempt per source over a shared race
// context and returns the first success.
//
// A winner cancels the race context, which every sibling attempt is derived
// from; a losing attempt that produces a result anyway closes it itself.
// Caller cancellation always takes precedence over waiting out the remaining
// attempts.
func (l *Libfetch) fetchFromAny(ctx context.Context, id fetchcore.Identity, srcs []fetchcore.Source) (*fetchcore.Result, error) {
	if len(srcs) == 0 {
		return nil, notFound(id)
	}
	rctx, done := context.WithCancel(ctx)
	defer done()
	reports := make(chan report)
	for _, src := range srcs {
		go func() {
			res, err := l.fetchFrom(rctx, src, id)
			select {
			case reports <- report{src: src, res: res, err: err}:
			case <-rctx.Done():
				// Lost the race after producing a result; release it.
				if res == nil {
					return
				}
				if err := res.Close(); err != nil {
					zlog.Warn(ctx).
						Err(err).
						Str("source", src.Name()).
						Msg("unable to close discarded result")
				}
			}
		}()
	}
	for pending := len(srcs); pending > 0; pending-- {
		var rep report
		select {
		case rep = <-reports:
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
		if rep.err == nil {
			zlog.Debug(ctx).
				Str("source", rep.src.Name()).
				Msg("source won race")
			return rep.res, nil
		}
		// The caller going away trumps riding out the rest of the race.
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		zlog.Debug(ctx).
			Str("source", rep.src.Name()).
			Err(rep.err).
			Msg("source eliminated from race")
	}
	return nil, notFound(id)
}

// FetchFrom retrieves id from a single source and normalizes the payload
// stream so it supports seeking.
func (l *Libfetch) fetchFrom(ctx context.Context, src fetchcore.Source, id fetchcore.Identity) (*fetchcore.Result, error) {
	ctx = zlog.ContextWithValues(ctx,
		"component", "libfetch/Libfetch.fetchFrom",
		"source", src.Name())
	// Doomed attempts shouldn't start work.
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}
	f, ok := src.(fetchcore.Fetcher)
	if !ok {
		return nil, &fetchcore.Error{
			Kind:    fetchcore.ErrCapability,
			Op:      "libfetch/Libfetch.fetchFrom",
			Message: fmt.Sprintf("source %q does not supply artifacts", src.Name()),
		}
	}
	zlog.Debug(ctx).Msg("attempt start")
	res, err := f.Fetch(ctx, id)
	switch {
	case err != nil && ctx.Err() != nil:
		return nil, context.Cause(ctx)
	case err != nil:
		return nil, &fetchcore.Error{
			Kind:  fetchcore.ErrTransport,
			Op:    "libfetch/Libfetch.fetchFrom",
			Inner: err,
		}
	case res == nil:
		return nil, &fetchcore.Error{
			Kind:    fetchcore.ErrEmpty,
			Op:      "libfetch/Libfetch.fetchFrom",
			Message: fmt.Sprintf("source %q returned nothing for %v", src.Name(), id),
		}
	}
	data, err := stream.EnsureSeekable(ctx, res.Data)
	if err != nil {
		// EnsureSeekable already released the payload stream.
		res.Data = nil
		if cerr := res.Close(); cerr != nil {
			zlog.Warn(ctx).Err(cerr).Msg("unable to close result")
		}
		return nil, fmt.Errorf("normalizing stream from %q: %w", src.Name(), err)
	}
	res.Data = data
	if res.Source == "" {
		res.Source = src.Name()
	}
	zlog.Debug(ctx).Msg("attempt ok")
	return res, nil
}

func notFound(id fetchcore.Identity) error {
	return &fetchcore.Error{
		Kind:    fetchcore.ErrNotFound,
		Op:      "libfetch/Libfetch.Fetch",
		Message: fmt.Sprintf("no source supplied %v", id),
	}
}
