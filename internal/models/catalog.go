package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Category is one labelled group of records in curation order.
type Category struct {
	Label   string
	Records []ExtensionRecord
}

// Catalog maps category labels to ordered records. Category order is
// significant and preserved through JSON encoding.
type Catalog struct {
	Categories []Category
}

// Clone returns an independent deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{Categories: make([]Category, len(c.Categories))}
	for i, cat := range c.Categories {
		records := make([]ExtensionRecord, len(cat.Records))
		for j, rec := range cat.Records {
			records[j] = rec.Clone()
		}
		out.Categories[i] = Category{Label: cat.Label, Records: records}
	}
	return out
}

// Lookup resolves a repo identifier against every category.
func (c *Catalog) Lookup(repo string) (*ExtensionRecord, bool) {
	for i := range c.Categories {
		for j := range c.Categories[i].Records {
			if c.Categories[i].Records[j].Repo == repo {
				return &c.Categories[i].Records[j], true
			}
		}
	}
	return nil, false
}

// Repos returns every repo identifier in display order.
func (c *Catalog) Repos() []string {
	var repos []string
	for _, cat := range c.Categories {
		for _, rec := range cat.Records {
			repos = append(repos, rec.Repo)
		}
	}
	return repos
}

// Len returns the total number of records across all categories.
func (c *Catalog) Len() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Records)
	}
	return n
}

// MarshalJSON encodes the catalog as an object keyed by category label.
func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Label)
		if err != nil {
			return nil, err
		}
		records := cat.Records
		if records == nil {
			records = []ExtensionRecord{}
		}
		val, err := json.Marshal(records)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by category label, keeping key order.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("catalog: expected object, got %v", tok)
	}

	c.Categories = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("catalog: expected category label, got %v", tok)
		}
		var records []ExtensionRecord
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("catalog: category %q: %w", label, err)
		}
		if records == nil {
			records = []ExtensionRecord{}
		}
		c.Categories = append(c.Categories, Category{Label: label, Records: records})
	}
	_, err = dec.Token()
	return err
}
