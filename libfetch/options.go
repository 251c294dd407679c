package libfetch

import (
	"github.com/fetchcore/fetchcore"
)

// DefaultFetchConcurrency bounds how many artifacts FetchAll retrieves in
// parallel.
const DefaultFetchConcurrency = 10

// Options are dependencies and options for constructing an instance of
// Libfetch.
type Options struct {
	// Sources are the default sources raced by Fetch when the caller doesn't
	// supply a set of its own. Order carries no meaning; whichever source
	// finishes first wins.
	Sources []fetchcore.Source
	// FetchConcurrency is the number of artifacts FetchAll retrieves in
	// parallel. Defaulted if unset.
	FetchConcurrency int
}
