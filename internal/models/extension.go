package models

import "fmt"

// RecordType tags a catalog entry as an extension or a tool.
type RecordType string

// Record type constants
const (
	TypeExtension RecordType = "Extension"
	TypeTool      RecordType = "Tool"
)

// ParseRecordType converts a raw type name into a RecordType.
func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(s) {
	case TypeExtension, TypeTool:
		return RecordType(s), nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// URLLink is a related link shown at the bottom of a card.
type URLLink struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
}

// Text returns the label if present, otherwise the URL.
func (l URLLink) Text() string {
	if l.Label != "" {
		return l.Label
	}
	return l.URL
}

// ExtensionRef is a weak reference to another record by repo identifier.
type ExtensionRef struct {
	Repo string `json:"repo"`
}

// ExtensionRecord is one curated catalog entry.
type ExtensionRecord struct {
	Repo          string         `json:"repo"`
	Type          RecordType     `json:"type"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	URL           string         `json:"url"`
	Description   string         `json:"description"`
	Links         []URLLink      `json:"links"`
	Forks         []ExtensionRef `json:"forks,omitempty"`
	DepreciatedBy []ExtensionRef `json:"depreciatedBy,omitempty"`
}

// Clone returns a deep copy of the record.
func (r ExtensionRecord) Clone() ExtensionRecord {
	out := r
	if r.Links != nil {
		out.Links = append([]URLLink{}, r.Links...)
	}
	if r.Forks != nil {
		out.Forks = append([]ExtensionRef{}, r.Forks...)
	}
	if r.DepreciatedBy != nil {
		out.DepreciatedBy = append([]ExtensionRef{}, r.DepreciatedBy...)
	}
	return out
}

// IsDepreciated reports whether other records supersede this one.
func (r *ExtensionRecord) IsDepreciated() bool {
	return len(r.DepreciatedBy) > 0
}
