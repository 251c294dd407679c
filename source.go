package fetchcore

import "context"

// Source is a configured remote origin that may be able to supply artifacts.
//
// A Source that can actually retrieve artifacts additionally implements
// [Fetcher]. Resolving that capability is an interface upgrade: a Source
// without it is a legitimate configuration, not a broken one.
type Source interface {
	// Name reports a stable, human-readable name for the source, used in
	// logs and error messages.
	Name() string
}

// Fetcher is the retrieval capability of a Source.
type Fetcher interface {
	Source
	// Fetch retrieves the artifact named by id.
	//
	// Returning a nil Result with a nil error means the source ran without
	// fault but has nothing usable for the identity.
	//
	// The streams inside a returned Result are exclusively owned by the
	// caller, which must close them. Implementations must observe ctx at
	// reasonable checkpoints, but a Fetch already past its last checkpoint
	// may complete anyway; its result is simply discarded by the caller.
	Fetch(ctx context.Context, id Identity) (*Result, error)
}
