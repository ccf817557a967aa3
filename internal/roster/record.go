// Package roster reads membership roster exports: delimited text files with a
// header row and one row per member, where free-text fields may contain raw
// newlines and delimiter characters inside quoted spans.
package roster

// Record is one row of the roster export, mapped to named fields.
// Field positions follow the export layout: external id, alternate name,
// primary name, contact id, avatar, industry, identity, bio, tags, location,
// resources, phone.
type Record struct {
	Row         int    // source row number, 2-based (row 1 is the header)
	ExternalID  string
	AltName     string
	PrimaryName string
	Name        string // PrimaryName with fallback to AltName
	ContactID   string
	Avatar      string
	Industry    string
	Identity    string
	Bio         string
	RawTags     string
	Location    string
	Resources   string
	Phone       string
}

// ParseResult holds the mapped records plus the raw counts needed to account
// for silently dropped rows (missing name).
type ParseResult struct {
	Records  []Record
	Headers  []string
	RawRows  int // record boundaries seen, before the name filter
	Dropped  int // rows dropped for having no usable name
}
