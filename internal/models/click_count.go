package models

// ClickCountListing maps a repo identifier to its display-formatted count.
type ClickCountListing map[string]string

// CountSummary holds per-type result counts while a search is active.
type CountSummary struct {
	Extensions int `json:"extensions"`
	Tools      int `json:"tools"`
}

// Total returns the number of records across both types.
func (s CountSummary) Total() int {
	return s.Extensions + s.Tools
}

// ClickCount is a raw persisted counter row.
type ClickCount struct {
	Repo  string
	Count int64
}
