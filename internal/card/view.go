package card

import (
	"html/template"

	"awesomearcade/internal/models"
)

// NoResultsMessage is shown for a category without matching records.
const NoResultsMessage = "Could not find any results with your search query!"

// View is the template model for one card.
type View struct {
	Repo        string
	Anchor      string
	Title       string
	Author      string
	AuthorURL   string
	URL         string
	Description template.HTML
	Links       []LinkView
	Count       CountState
	Forks       *Notice
	Depreciated *Notice
}

// LinkView is one related link.
type LinkView struct {
	URL  string
	Text string
}

// Notice is a fork or depreciation alert. It renders as
// "<Before> <b><Count></b> <After>" followed by the referenced records.
type Notice struct {
	Before string
	Count  int
	After  string
	Refs   []RefView
}

// RefView is a resolved weak reference.
type RefView struct {
	Repo   string
	Anchor string
	Title  string
	Found  bool
}

// Group is the template model for one category.
type Group struct {
	Label       string
	Description string
	Cards       []View
}

// Empty reports whether the group has no cards to show.
func (g Group) Empty() bool {
	return len(g.Cards) == 0
}

// NewView builds the view for record. References are resolved against the
// canonical catalog, and the count comes from listing when present.
func NewView(record models.ExtensionRecord, canonical *models.Catalog, listing models.ClickCountListing) View {
	v := View{
		Repo:        record.Repo,
		Anchor:      anchor(record.Repo),
		Title:       record.Title,
		Author:      record.Author,
		AuthorURL:   "https://github.com/" + record.Author,
		URL:         record.URL,
		Description: template.HTML(record.Description),
		Links:       make([]LinkView, 0, len(record.Links)),
	}
	for _, l := range record.Links {
		v.Links = append(v.Links, LinkView{URL: l.URL, Text: l.Text()})
	}
	if count, ok := listing[record.Repo]; ok {
		v.Count = KnownCount(count)
	}

	if n := len(record.Forks); n > 0 {
		v.Forks = &Notice{
			Before: "There " + plural(n, "is", "are"),
			Count:  n,
			After:  plural(n, "fork", "forks") + " available:",
			Refs:   resolve(record.Forks, canonical),
		}
	}
	if record.IsDepreciated() {
		n := len(record.DepreciatedBy)
		v.Depreciated = &Notice{
			Before: "This extension is depreciated by",
			Count:  n,
			After:  "other " + plural(n, "extension", "extensions") + ":",
			Refs:   resolve(record.DepreciatedBy, canonical),
		}
	}
	return v
}

// NewGroups builds one group per category of filtered, in catalog order.
// describe may be nil.
func NewGroups(filtered, canonical *models.Catalog, listing models.ClickCountListing, describe func(label string) string) []Group {
	if filtered == nil {
		return nil
	}
	groups := make([]Group, 0, len(filtered.Categories))
	for _, cat := range filtered.Categories {
		g := Group{Label: cat.Label, Cards: make([]View, 0, len(cat.Records))}
		if describe != nil {
			g.Description = describe(cat.Label)
		}
		for _, r := range cat.Records {
			g.Cards = append(g.Cards, NewView(r, canonical, listing))
		}
		groups = append(groups, g)
	}
	return groups
}

func resolve(refs []models.ExtensionRef, canonical *models.Catalog) []RefView {
	out := make([]RefView, 0, len(refs))
	for _, ref := range refs {
		rv := RefView{Repo: ref.Repo, Anchor: anchor(ref.Repo), Title: ref.Repo}
		if canonical != nil {
			if rec, ok := canonical.Lookup(ref.Repo); ok {
				rv.Title = rec.Title
				rv.Found = true
			}
		}
		out = append(out, rv)
	}
	return out
}

func anchor(repo string) string {
	return "/#" + repo
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
