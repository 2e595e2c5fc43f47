package model

import "time"

// Sentinel values substituted when the catalog record omits a field.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// BookRecord is one public-domain-eligible catalog item. The csv tags define
// the persisted column order of the checklist dataset. Year is nil when no
// publication year could be recovered and round-trips as an empty cell.
type BookRecord struct {
	ID        string `csv:"id"`
	Title     string `csv:"title"`
	Author    string `csv:"author"`
	Year      *int   `csv:"year"`
	Completed Flag   `csv:"completed"`
}

// Flag is a bool that persists as "1"/"0" in the checklist CSV.
type Flag bool

// MarshalCSV implements csvutil.Marshaler.
func (f Flag) MarshalCSV() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalCSV implements csvutil.Unmarshaler.
func (f *Flag) UnmarshalCSV(data []byte) error {
	switch string(data) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Candidate is a parsed catalog record before classification.
type Candidate struct {
	ID          string
	Title       string
	Author      string
	Year        *int
	RightsTexts []string
}

// Record converts an eligible candidate into its persisted form.
func (c Candidate) Record() BookRecord {
	return BookRecord{
		ID:     c.ID,
		Title:  c.Title,
		Author: c.Author,
		Year:   c.Year,
	}
}

// RejectReason says why a record was dropped during a build pass.
type RejectReason string

const (
	RejectNonEnglish RejectReason = "non_english"
	RejectMalformed  RejectReason = "malformed"
	RejectIneligible RejectReason = "ineligible"
)

// Outcome is the per-record result of the classification pipeline. Exactly one
// of Accepted/Rejected applies: Accepted is true iff Book is populated.
type Outcome struct {
	ID       string
	Accepted bool
	Book     BookRecord
	Reason   RejectReason
}

// Accept builds an accepted outcome for the given record.
func Accept(book BookRecord) Outcome {
	return Outcome{ID: book.ID, Accepted: true, Book: book}
}

// Reject builds a rejected outcome with the given reason.
func Reject(id string, reason RejectReason) Outcome {
	return Outcome{ID: id, Reason: reason}
}

// BuildRun is one recorded invocation of the build command.
type BuildRun struct {
	ID         string        `json:"id"`
	CutoffYear int           `json:"cutoff_year"`
	Scrape     bool          `json:"scrape"`
	Scanned    int           `json:"scanned"`
	Eligible   int           `json:"eligible"`
	Rejected   int           `json:"rejected"`
	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
}
