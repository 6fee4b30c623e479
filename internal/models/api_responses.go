package models

// CountChangeResponse is the payload of a repo click count change event.
// A nil Count means the counter service is unavailable.
type CountChangeResponse struct {
	Repo  string  `json:"repo"`
	Count *string `json:"count"`
}

// SearchResponse is returned by the JSON search endpoint.
type SearchResponse struct {
	Query   string        `json:"query"`
	Catalog Catalog       `json:"catalog"`
	Counts  *CountSummary `json:"counts,omitempty"`
}
