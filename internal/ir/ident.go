package ir

import (
	"fmt"
	"sort"
)

// Ident is a resolved identifier: a source name plus a globally unique
// integer stamp. Two idents are the same binding iff their stamps are equal;
// names exist only for diagnostics and emitted symbol names.
type Ident struct {
	Name  string
	Stamp int
}

// String renders the ident as name/stamp for diagnostics.
func (id Ident) String() string {
	return fmt.Sprintf("%s/%d", id.Name, id.Stamp)
}

// Namer allocates fresh identifier stamps. It is a value: Fresh returns the
// new ident together with the advanced namer, so stamp allocation threads
// through callers explicitly instead of hiding behind a process-wide counter.
type Namer struct {
	next int
}

// NewNamer returns a namer whose first stamp is 1. Stamp 0 is reserved as
// the zero-value "no ident" sentinel.
func NewNamer() Namer {
	return Namer{next: 1}
}

// Fresh allocates a new ident with the given name.
func (n Namer) Fresh(name string) (Ident, Namer) {
	id := Ident{Name: name, Stamp: n.next}
	return id, Namer{next: n.next + 1}
}

// IdentSet is a set of idents keyed by stamp.
type IdentSet map[int]Ident

// NewIdentSet builds a set from the given idents.
func NewIdentSet(ids ...Ident) IdentSet {
	s := make(IdentSet, len(ids))
	for _, id := range ids {
		s[id.Stamp] = id
	}
	return s
}

// Contains reports whether id is in the set.
func (s IdentSet) Contains(id Ident) bool {
	_, ok := s[id.Stamp]
	return ok
}

// Add inserts id into the set.
func (s IdentSet) Add(id Ident) {
	s[id.Stamp] = id
}

// Union inserts every ident of other into the set.
func (s IdentSet) Union(other IdentSet) {
	for stamp, id := range other {
		s[stamp] = id
	}
}

// Remove deletes id from the set.
func (s IdentSet) Remove(id Ident) {
	delete(s, id.Stamp)
}

// Sorted returns the set's idents ordered by stamp. Stamp order is the
// introduction order of the binders, which keeps everything derived from a
// set (closure field layout, error messages) deterministic.
func (s IdentSet) Sorted() []Ident {
	out := make([]Ident, 0, len(s))
	for _, id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stamp < out[j].Stamp })
	return out
}
