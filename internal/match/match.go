// Package match resolves roster records to persisted members.
package match

import (
	"rostersync/internal/roster"
	"rostersync/internal/store"
)

// Index holds exact-match lookups over the member set. Duplicate names or
// phones are a pre-existing data-quality problem: the first row keeps the
// slot and later rows are recorded as duplicates for reporting only.
type Index struct {
	byName  map[string]store.User
	byPhone map[string]store.User

	// DuplicateNames and DuplicatePhones list values that appeared more
	// than once while building the index.
	DuplicateNames  []string
	DuplicatePhones []string
}

// NewIndex builds the lookup maps from a member snapshot.
func NewIndex(users []store.User) *Index {
	idx := &Index{
		byName:  make(map[string]store.User, len(users)),
		byPhone: make(map[string]store.User, len(users)),
	}
	for _, u := range users {
		if _, seen := idx.byName[u.Name]; seen {
			idx.DuplicateNames = append(idx.DuplicateNames, u.Name)
		} else {
			idx.byName[u.Name] = u
		}
		if u.Phone == "" {
			continue
		}
		if _, seen := idx.byPhone[u.Phone]; seen {
			idx.DuplicatePhones = append(idx.DuplicatePhones, u.Phone)
		} else {
			idx.byPhone[u.Phone] = u
		}
	}
	return idx
}

// Find returns the member matching a roster record: exact display name
// first, then exact phone. No fuzzy stage.
func (idx *Index) Find(rec roster.Record) (store.User, bool) {
	if u, ok := idx.byName[rec.Name]; ok {
		return u, true
	}
	if rec.Phone != "" {
		if u, ok := idx.byPhone[rec.Phone]; ok {
			return u, true
		}
	}
	return store.User{}, false
}
