package model

// ResolutionStatus indicates how a client name resolved against the provider.
type ResolutionStatus string

// Resolution status constants.
const (
	ResolutionResolved  ResolutionStatus = "RESOLVED"
	ResolutionNotFound  ResolutionStatus = "NOT_FOUND"
	ResolutionAmbiguous ResolutionStatus = "AMBIGUOUS"
)

// ClientResolution is the cached outcome of one name lookup. ID and Email
// are set only when Status is RESOLVED; Matches carries the provider-side
// hit count for the ambiguous case.
type ClientResolution struct {
	Status  ResolutionStatus
	ID      string
	Email   string
	Matches int
}

// Billable reports whether an invoice may be issued against this resolution.
// Ambiguous names are deliberately not billable: guessing between provider
// records would invoice the wrong person.
func (r ClientResolution) Billable() bool {
	return r.Status == ResolutionResolved
}

// ClientMatch is one provider-side search hit.
type ClientMatch struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// ClientSearchResult is the provider's response to a name search.
type ClientSearchResult struct {
	Total int           `json:"total"`
	Items []ClientMatch `json:"items"`
}

// RowStatus is the terminal state of one processed row.
type RowStatus string

// Row status constants.
const (
	RowSkipped   RowStatus = "SKIPPED"
	RowChecked   RowStatus = "CHECKED"
	RowPreviewed RowStatus = "PREVIEWED"
	RowSubmitted RowStatus = "SUBMITTED"
	RowDeferred  RowStatus = "DEFERRED_MISSING_CLIENT"
	RowFailed    RowStatus = "FAILED"
)

// RowOutcome records how one row finished. NeedsReconciliation marks a
// submitted invoice whose spreadsheet flag could not be persisted.
type RowOutcome struct {
	Err                 error
	ClientName          string
	Status              RowStatus
	Row                 int
	NeedsReconciliation bool
}
