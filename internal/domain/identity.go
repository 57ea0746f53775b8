package domain

import "strings"

// Identity is the principal a search request is executed on behalf of.
// It is an opaque stable identifier issued by the upstream auth layer;
// the engine never derives permissions from it directly.
type Identity string

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool { return strings.TrimSpace(string(i)) == "" }

func (i Identity) String() string { return string(i) }
