package fetchcore

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// Identity names a single retrievable artifact: a logical package name plus a
// version.
//
// Identities are comparable value types and are usable as map keys.
type Identity struct {
	Name    string
	Version string
}

// NewIdentity returns an Identity for the named package at the given version.
//
// The version must parse as a semantic version; it's stored in normalized
// form, so two Identities constructed from equivalent version spellings
// compare equal.
func NewIdentity(name, version string) (Identity, error) {
	if name == "" {
		return Identity{}, &Error{
			Kind:    ErrInvalid,
			Op:      "NewIdentity",
			Message: "empty package name",
		}
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return Identity{}, &Error{
			Kind:    ErrInvalid,
			Op:      "NewIdentity",
			Message: fmt.Sprintf("bad version %q", version),
			Inner:   err,
		}
	}
	ver := fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
	if p := v.Prerelease(); p != "" {
		ver += "-" + p
	}
	if m := v.Metadata(); m != "" {
		ver += "+" + m
	}
	return Identity{
		Name:    name,
		Version: ver,
	}, nil
}

// String implements fmt.Stringer.
func (i Identity) String() string {
	return i.Name + "@" + i.Version
}
