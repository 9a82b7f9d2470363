// Package browse searches, filters, sorts and pages registrar records for the
// terminal browser and the export command.
package browse

import (
	"sort"
	"strconv"
	"strings"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

// Matches reports whether r passes every filter in q.
func Matches(r registrar.Record, q Query) bool {
	if q.Provider != "" && r.Provider.Name != q.Provider {
		return false
	}
	if q.Kind != "" && r.Provider.Kind != q.Kind {
		return false
	}
	if !q.Size.Contains(r.DomainCount) {
		return false
	}
	if q.Category != "" && !matchCategory(r.Category, q.Category) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	for _, field := range searchFields(r) {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func matchCategory(have, want string) bool {
	if want == Uncategorized || strings.EqualFold(want, "null") {
		return strings.TrimSpace(have) == ""
	}
	return strings.EqualFold(strings.TrimSpace(have), want)
}

func searchFields(r registrar.Record) []string {
	return []string{
		r.Name,
		strconv.Itoa(r.IANAID),
		r.RDAPURL,
		r.Provider.Name,
		r.Category,
		r.Website,
		r.WebsiteSource,
		r.WhoisServer,
		r.Status,
		r.Notes,
	}
}

// Filter returns the records matching q in their original order.
func Filter(records []registrar.Record, q Query) []registrar.Record {
	out := make([]registrar.Record, 0, len(records))
	for _, r := range records {
		if Matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records in place by field. Ties always fall back to IANA id
// ascending so the order is total.
func Sort(records []registrar.Record, field SortField, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j], field)
		if c == 0 {
			return records[i].IANAID < records[j].IANAID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b registrar.Record, field SortField) int {
	switch field {
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortIANAID:
		return cmpInt(int64(a.IANAID), int64(b.IANAID))
	case SortProvider:
		return strings.Compare(strings.ToLower(a.Provider.Name), strings.ToLower(b.Provider.Name))
	case SortKind:
		return strings.Compare(string(a.Provider.Kind), string(b.Provider.Kind))
	case SortCategory:
		return strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
	}
	return cmpInt(a.DomainCount, b.DomainCount)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Apply filters and sorts a copy of records.
func Apply(records []registrar.Record, q Query) []registrar.Record {
	out := Filter(records, q)
	field := q.Sort
	if field == "" {
		field = SortDomainCount
	}
	Sort(out, field, q.Desc)
	return out
}

// Page is one page of a view.
type Page struct {
	Records    []registrar.Record
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// First is the 1-based position of the first record on the page, or 0 when
// the page is empty.
func (p Page) First() int {
	if len(p.Records) == 0 {
		return 0
	}
	return (p.Page-1)*p.PageSize + 1
}

// Last is the 1-based position of the last record on the page.
func (p Page) Last() int {
	if len(p.Records) == 0 {
		return 0
	}
	return p.First() + len(p.Records) - 1
}

// Paginate cuts one page out of records. Page numbers start at 1 and are
// clamped to the valid range; there is always at least one page.
func Paginate(records []registrar.Record, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(records)
	pages := max((total+size-1)/size, 1)
	page = min(max(page, 1), pages)

	start := (page - 1) * size
	end := min(start+size, total)
	return Page{
		Records:    records[start:end],
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
	}
}

// Facets lists the distinct filter values present in a dataset.
type Facets struct {
	Providers  []string
	Kinds      []registrar.Kind
	Categories []string
	// HasUncategorized is set when some record has no category.
	HasUncategorized bool
}

// BuildFacets collects the sorted distinct providers, kinds and categories.
func BuildFacets(records []registrar.Record) Facets {
	providers := map[string]struct{}{}
	kinds := map[registrar.Kind]struct{}{}
	categories := map[string]struct{}{}
	var f Facets
	for _, r := range records {
		if r.Provider.Name != "" {
			providers[r.Provider.Name] = struct{}{}
		}
		if r.Provider.Kind != "" {
			kinds[r.Provider.Kind] = struct{}{}
		}
		if c := strings.TrimSpace(r.Category); c != "" {
			categories[c] = struct{}{}
		} else {
			f.HasUncategorized = true
		}
	}
	f.Providers = keys(providers)
	f.Categories = keys(categories)
	for _, k := range []registrar.Kind{registrar.KindGateway, registrar.KindCandidate, registrar.KindSelfHosted} {
		if _, ok := kinds[k]; ok {
			f.Kinds = append(f.Kinds, k)
		}
	}
	return f
}

// CategoryOptions returns the category filter values in cycling order,
// starting with "" for no filter.
func (f Facets) CategoryOptions() []string {
	out := append([]string{""}, f.Categories...)
	if f.HasUncategorized {
		out = append(out, Uncategorized)
	}
	return out
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i]), strings.ToLower(out[j])
		if li != lj {
			return li < lj
		}
		return out[i] < out[j]
	})
	return out
}
