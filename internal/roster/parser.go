package roster

import (
	"regexp"
	"strings"

	"rostersync/internal/normalize"
)

var recordStart = regexp.MustCompile(`^\d+,`)

// Parse converts roster export bytes into field-mapped records.
//
// The export is not valid RFC 4180 CSV: biography fields contain raw newlines
// and the quoting mixes ASCII and CJK smart quotes, so encoding/csv rejects
// it. Instead, a new record begins at any line starting with a numeric id
// followed by the delimiter; every other line is a continuation of the
// previous record's last open field, rejoined with a newline.
//
// Records whose name resolves to empty (or the "." placeholder) are dropped,
// not reported as errors; the gap is visible as RawRows - len(Records).
func Parse(data []byte) ParseResult {
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if len(lines) == 0 {
		return ParseResult{}
	}

	res := ParseResult{Headers: splitFields(lines[0])}

	var pending []string
	var pendingRow int
	row := 1 // header occupies row 1

	flush := func() {
		if len(pending) == 0 {
			return
		}
		res.RawRows++
		rec, ok := mapRecord(splitFields(strings.Join(pending, "\n")), pendingRow)
		if ok {
			res.Records = append(res.Records, rec)
		} else {
			res.Dropped++
		}
		pending = nil
	}

	for _, line := range lines[1:] {
		row++
		if recordStart.MatchString(line) {
			flush()
			pending = []string{line}
			pendingRow = row
			continue
		}
		if len(pending) > 0 {
			pending = append(pending, line)
		}
	}
	flush()
	return res
}

// splitFields splits one logical record on commas, honoring quote state.
// ASCII double quotes toggle; a CJK open quote is closed only by its CJK
// counterpart. Quote characters themselves are kept out of the field value.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	inSmart := false

	for _, r := range line {
		switch {
		case r == '"' && !inSmart:
			inQuotes = !inQuotes
		case r == '“' && !inQuotes && !inSmart: // “
			inSmart = true
		case r == '”' && inSmart: // ”
			inSmart = false
		case r == ',' && !inQuotes && !inSmart:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

func mapRecord(fields []string, row int) (Record, bool) {
	get := func(i int) string {
		if i < len(fields) {
			return strings.TrimSpace(fields[i])
		}
		return ""
	}

	rec := Record{
		Row:         row,
		ExternalID:  get(0),
		AltName:     get(1),
		PrimaryName: get(2),
		ContactID:   get(3),
		Avatar:      get(4),
		Industry:    get(5),
		Identity:    get(6),
		Bio:         get(7),
		RawTags:     get(8),
		Location:    get(9),
		Resources:   get(10),
		// Folded at the boundary so matching and login-id synthesis see
		// the same key.
		Phone: normalize.FoldPhone(get(11)),
	}

	name := rec.PrimaryName
	if name == "" || name == "." {
		name = rec.AltName
	}
	if name == "" || name == "." {
		return Record{}, false
	}
	rec.Name = name
	return rec, true
}
