// Package reconcile decides and applies insert/update/skip/delete operations
// between a parsed roster and the member store. Planning is a pure function
// of its inputs; only Apply touches the store.
package reconcile

import (
	"rostersync/internal/match"
	"rostersync/internal/normalize"
	"rostersync/internal/roster"
	"rostersync/internal/store"
)

// FieldChange records one field-level mismatch found during planning.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Update is a planned partial update of a matched member.
type Update struct {
	EntityID string
	Name     string
	Fields   map[string]string
	Changes  []FieldChange
}

// Insert is a planned creation of a new member from a roster record.
type Insert struct {
	Row  int
	User store.User
}

// Delete is a planned cascade removal of a test-data member.
type Delete struct {
	EntityID string
	Name     string
}

// Plan is the complete set of decisions for one run.
type Plan struct {
	Inserts []Insert
	Updates []Update
	Skipped int
	Deletes []Delete
	// Extras are unmatched members retained (not test data).
	Extras []store.User

	DuplicateNames  []string
	DuplicatePhones []string
}

// Planner computes plans. It carries the normalization tables and the
// run rules but no store handle.
type Planner struct {
	Extractor *normalize.Extractor
	Rules     Rules
	// PasswordHash is the pre-computed bcrypt hash assigned to inserts.
	PasswordHash string
}

// Build compares every roster record against the member snapshot and
// classifies each as update, skip or insert; members never claimed by a
// record become deletes (test data) or retained extras.
func (p *Planner) Build(records []roster.Record, users []store.User) Plan {
	idx := match.NewIndex(users)
	plan := Plan{
		DuplicateNames:  idx.DuplicateNames,
		DuplicatePhones: idx.DuplicatePhones,
	}
	claimed := make(map[string]bool, len(records))

	for _, rec := range records {
		existing, ok := idx.Find(rec)
		if !ok {
			plan.Inserts = append(plan.Inserts, Insert{Row: rec.Row, User: p.newUser(rec)})
			continue
		}
		claimed[existing.ID] = true

		fields := map[string]string{}
		var changes []FieldChange
		for _, c := range []struct{ name, old, new string }{
			{"location", existing.Location, p.Extractor.ExtractCity(rec.Location)},
			{"company", existing.Company, rec.Industry},
			{"position", existing.Position, rec.Identity},
			{"avatar", existing.Avatar, rec.Avatar},
			{"bio", existing.Bio, rec.Bio},
		} {
			if c.old != c.new {
				fields[c.name] = c.new
				changes = append(changes, FieldChange{Field: c.name, Old: c.old, New: c.new})
			}
		}
		if len(fields) == 0 {
			plan.Skipped++
			continue
		}
		plan.Updates = append(plan.Updates, Update{
			EntityID: existing.ID,
			Name:     existing.Name,
			Fields:   fields,
			Changes:  changes,
		})
	}

	for _, u := range users {
		if claimed[u.ID] {
			continue
		}
		if p.Rules.IsTestData(u.Name) {
			plan.Deletes = append(plan.Deletes, Delete{EntityID: u.ID, Name: u.Name})
		} else {
			plan.Extras = append(plan.Extras, u)
		}
	}
	return plan
}

// newUser maps a roster record onto a fresh member entity. Only the fields
// sourced from the roster are set; account role, points and level keep
// store defaults.
func (p *Planner) newUser(rec roster.Record) store.User {
	return store.User{
		Name:     normalize.Truncate(rec.Name, normalize.MaxNameLen),
		Phone:    normalize.SynthesizeLoginID(rec.Phone, rec.ExternalID, rec.ContactID, rec.Row),
		Password: p.PasswordHash,
		Avatar:   rec.Avatar,
		Bio:      normalize.Truncate(rec.Bio, normalize.MaxBioLen),
		Skills:   normalize.TagsJSON(rec.RawTags),
		Location: p.Extractor.ExtractCity(rec.Location),
		Company:  rec.Industry,
		Position: rec.Identity,
		Role:     "USER",
		IsActive: true,
	}
}
