// internal/session/credential.go
package session

import (
	"maps"
	"sort"
)

// Credential is a set of named session tokens (a cookie jar snapshot).
// Values are never mutated after capture; use Clone before keeping one.
type Credential map[string]string

// Clone returns an independent copy. Clone of an empty credential is nil.
func (c Credential) Clone() Credential {
	if len(c) == 0 {
		return nil
	}
	return maps.Clone(c)
}

// Equal compares structurally. nil and empty are equal.
func (c Credential) Equal(other Credential) bool {
	return maps.Equal(c, other)
}

// Empty reports whether no tokens are held.
func (c Credential) Empty() bool {
	return len(c) == 0
}

// Names returns the token names in sorted order.
func (c Credential) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Difference describes how two credentials differ, by token name.
type Difference struct {
	OnlyInA   []string
	OnlyInB   []string
	Changed   []string
	Unchanged []string
}

// Identical reports whether both credentials hold the same tokens and values.
func (d Difference) Identical() bool {
	return len(d.OnlyInA) == 0 && len(d.OnlyInB) == 0 && len(d.Changed) == 0
}

// Diff compares a and b. All name lists are sorted.
func Diff(a, b Credential) Difference {
	var d Difference

	for _, name := range a.Names() {
		bv, ok := b[name]
		switch {
		case !ok:
			d.OnlyInA = append(d.OnlyInA, name)
		case bv != a[name]:
			d.Changed = append(d.Changed, name)
		default:
			d.Unchanged = append(d.Unchanged, name)
		}
	}
	for _, name := range b.Names() {
		if _, ok := a[name]; !ok {
			d.OnlyInB = append(d.OnlyInB, name)
		}
	}

	return d
}
