package fetchcore

import (
	"fmt"
	"io"
)

// Result is a successfully retrieved artifact.
//
// A Result is exclusively owned: whoever holds it must either hand it off
// whole or call Close. Results returned by the libfetch package additionally
// guarantee that Data implements [io.Seeker] and is positioned at the start.
type Result struct {
	// Data is the artifact payload. Never nil on a live Result.
	Data io.ReadCloser
	// Manifest is the artifact's metadata document, if the source supplied
	// one.
	Manifest io.ReadCloser
	// Source is the name of the source that produced the Result.
	Source string
	// Digest is the content digest the source reported, if any.
	Digest Digest
}

// Close releases every stream held by the Result.
func (r *Result) Close() error {
	var err error
	if r.Manifest != nil {
		err = r.Manifest.Close()
	}
	if r.Data != nil {
		if e := r.Data.Close(); e != nil {
			if err == nil {
				err = e
			} else {
				err = fmt.Errorf("%v; %v", err, e)
			}
		}
	}
	return err
}
