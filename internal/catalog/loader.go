// Package catalog loads the curated extension list from its XML source and
// publishes the resulting catalog for the page and for external consumers.
package catalog

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"awesomearcade/internal/models"
	"awesomearcade/internal/renderer"
	"awesomearcade/internal/validation"
)

type xmlCatalog struct {
	XMLName    xml.Name      `xml:"catalog"`
	Categories []xmlCategory `xml:"category"`
}

type xmlCategory struct {
	Label   string     `xml:"label,attr"`
	Entries []xmlEntry `xml:",any"`
}

// xmlEntry is an <extension> or <tool> element; the element name is the type.
type xmlEntry struct {
	XMLName       xml.Name
	Repo          string    `xml:"repo,attr"`
	Title         string    `xml:"title"`
	Author        string    `xml:"author"`
	URL           string    `xml:"url"`
	Description   string    `xml:"description"`
	Links         []xmlLink `xml:"links>link"`
	Forks         []xmlRef  `xml:"forks>ref"`
	DepreciatedBy []xmlRef  `xml:"depreciatedBy>ref"`
}

type xmlLink struct {
	Label string `xml:"label,attr"`
	URL   string `xml:",chardata"`
}

type xmlRef struct {
	Repo string `xml:"repo,attr"`
}

var entryTypes = map[string]models.RecordType{
	"extension": models.TypeExtension,
	"tool":      models.TypeTool,
}

// Loader parses catalog sources into models.Catalog values.
type Loader struct {
	renderer *renderer.Renderer
}

// NewLoader creates a loader that renders descriptions with r.
func NewLoader(r *renderer.Renderer) *Loader {
	return &Loader{renderer: r}
}

// Load parses raw XML with the default description renderer.
func Load(raw string) (*models.Catalog, error) {
	return NewLoader(renderer.New()).Load(raw)
}

// LoadFile reads and parses the catalog source at path.
func (l *Loader) LoadFile(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog source: %w", err)
	}
	return l.Load(string(data))
}

// Load parses raw XML into a catalog. The result has globally unique repo
// identifiers, categories in source order, and only resolvable references.
func (l *Loader) Load(raw string) (*models.Catalog, error) {
	var doc xmlCatalog
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	cat := &models.Catalog{Categories: make([]models.Category, 0, len(doc.Categories))}
	seenLabels := make(map[string]bool, len(doc.Categories))
	seenRepos := make(map[string]string)

	for _, xc := range doc.Categories {
		label := strings.TrimSpace(xc.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: category without label", ErrMalformedSource)
		}
		if seenLabels[label] {
			return nil, fmt.Errorf("%w: category %q declared twice", ErrMalformedSource, label)
		}
		seenLabels[label] = true

		records := make([]models.ExtensionRecord, 0, len(xc.Entries))
		for _, entry := range xc.Entries {
			rec, err := l.record(entry)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", label, err)
			}
			if prev, ok := seenRepos[rec.Repo]; ok {
				return nil, fmt.Errorf("%w: %q in %q and %q", ErrDuplicateRepo, rec.Repo, prev, label)
			}
			seenRepos[rec.Repo] = label
			records = append(records, rec)
		}
		cat.Categories = append(cat.Categories, models.Category{Label: label, Records: records})
	}

	if err := checkReferences(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (l *Loader) record(e xmlEntry) (models.ExtensionRecord, error) {
	typ, ok := entryTypes[e.XMLName.Local]
	if !ok {
		return models.ExtensionRecord{}, fmt.Errorf("%w: unexpected element <%s>", ErrInvalidRecord, e.XMLName.Local)
	}

	rec := models.ExtensionRecord{
		Repo:   validation.NormalizeRepo(e.Repo),
		Type:   typ,
		Title:  strings.TrimSpace(e.Title),
		Author: strings.TrimSpace(e.Author),
		URL:    strings.TrimSpace(e.URL),
		Links:  make([]models.URLLink, 0, len(e.Links)),
	}
	if valid, _ := validation.ValidateRepo(rec.Repo); !valid {
		return rec, fmt.Errorf("%w: invalid repo %q", ErrInvalidRecord, e.Repo)
	}
	if rec.Title == "" {
		return rec, fmt.Errorf("%w: %s has no title", ErrInvalidRecord, rec.Repo)
	}
	if rec.URL == "" {
		return rec, fmt.Errorf("%w: %s has no url", ErrInvalidRecord, rec.Repo)
	}

	desc, err := l.renderer.Render(e.Description)
	if err != nil {
		return rec, fmt.Errorf("%w: %s description: %v", ErrInvalidRecord, rec.Repo, err)
	}
	rec.Description = desc

	for _, link := range e.Links {
		u := strings.TrimSpace(link.URL)
		if ok, msg := validation.ValidateURL(u); !ok {
			return rec, fmt.Errorf("%w: %s link %q: %s", ErrInvalidRecord, rec.Repo, u, msg)
		}
		rec.Links = append(rec.Links, models.URLLink{URL: u, Label: strings.TrimSpace(link.Label)})
	}
	rec.Forks = refs(e.Forks)
	rec.DepreciatedBy = refs(e.DepreciatedBy)

	return rec, nil
}

func refs(in []xmlRef) []models.ExtensionRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]models.ExtensionRef, 0, len(in))
	for _, r := range in {
		out = append(out, models.ExtensionRef{Repo: validation.NormalizeRepo(r.Repo)})
	}
	return out
}

// checkReferences ensures every fork and depreciatedBy entry names a record
// in the catalog.
func checkReferences(cat *models.Catalog) error {
	for _, c := range cat.Categories {
		for _, rec := range c.Records {
			for _, ref := range append(append([]models.ExtensionRef{}, rec.Forks...), rec.DepreciatedBy...) {
				if ref.Repo == rec.Repo {
					return fmt.Errorf("%w: %s references itself", ErrDanglingRef, rec.Repo)
				}
				if _, ok := cat.Lookup(ref.Repo); !ok {
					return fmt.Errorf("%w: %s -> %s", ErrDanglingRef, rec.Repo, ref.Repo)
				}
			}
		}
	}
	return nil
}
