package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

const (
	// MaxTags bounds the serialized skill list.
	MaxTags = 5
	// MaxNameLen and MaxBioLen cap imported field lengths (in runes).
	MaxNameLen = 50
	MaxBioLen  = 500
)

var tagDelims = regexp.MustCompile(`[,，;；、/]+`)

// SplitTags splits a delimiter-separated tag list, dropping empties and the
// "无" placeholder, capped at MaxTags.
func SplitTags(raw string) []string {
	tags := make([]string, 0, MaxTags)
	for _, t := range tagDelims.Split(raw, -1) {
		t = strings.TrimSpace(t)
		if t == "" || t == "无" {
			continue
		}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

// TagsJSON serializes a tag list the way the member store expects skills:
// a JSON array, "[]" when empty.
func TagsJSON(raw string) string {
	b, err := json.Marshal(SplitTags(raw))
	if err != nil {
		return "[]"
	}
	return string(b)
}

// FoldPhone normalizes a phone field: full-width digits folded to ASCII,
// surrounding whitespace removed.
func FoldPhone(raw string) string {
	return strings.TrimSpace(width.Narrow.String(raw))
}

// SynthesizeLoginID picks the unique login identifier for an imported
// member: the phone when it looks real, else a deterministic placeholder
// derived from the external id, the contact id, or the source row.
// Placeholders are stable for a fixed source snapshot but can collide
// across snapshots; inserts treat that as a per-record error.
func SynthesizeLoginID(phone, externalID, contactID string, row int) string {
	phone = FoldPhone(phone)
	if phone != "" && phone != "无" && len(phone) > 5 {
		return phone
	}
	if externalID != "" {
		return "S" + externalID
	}
	if contactID != "" {
		return "wx_" + contactID
	}
	return fmt.Sprintf("user_%d", row)
}

// Truncate limits s to max runes.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
