package rules

import "strings"

// DefaultPerPage is the page size used by rule listings when none is given.
const DefaultPerPage = 20

// View is the serialized form of a rule.
type View struct {
	Name       string   `json:"name"`
	Pattern    string   `json:"pattern"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}

// ToView converts a rule for output.
func (r Rule) ToView() View {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return View{Name: r.Name, Pattern: r.Pattern, Tags: tags, Confidence: r.Confidence}
}

// Page is one page of a rule listing.
type Page struct {
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Rules   []View `json:"rules"`
}

// Start returns the 1-based index of the first rule on the page, or 0 when
// the page is empty.
func (p Page) Start() int {
	if len(p.Rules) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// End returns the 1-based index of the last rule on the page.
func (p Page) End() int {
	if len(p.Rules) == 0 {
		return 0
	}
	return p.Start() + len(p.Rules) - 1
}

// Filter keeps rules whose name contains query. An empty query keeps all.
func Filter(rs []Rule, query string) []Rule {
	if query == "" {
		return rs
	}
	var out []Rule
	for _, r := range rs {
		if strings.Contains(r.Name, query) {
			out = append(out, r)
		}
	}
	return out
}

// Paginate slices rs into a 1-based page. A page below 1 is treated as 1 and a
// non-positive perPage falls back to DefaultPerPage.
func Paginate(rs []Rule, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(rs)
	out := Page{Total: total, Page: page, PerPage: perPage, Rules: []View{}}
	start := (page - 1) * perPage
	if start >= total {
		return out
	}
	end := start + perPage
	if end > total {
		end = total
	}
	for _, r := range rs[start:end] {
		out.Rules = append(out.Rules, r.ToView())
	}
	return out
}
