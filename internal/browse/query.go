package browse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

// DefaultPageSize is the number of rows per page when none is configured.
const DefaultPageSize = 20

// Uncategorized is the category filter value matching records with no
// category. "null" is accepted as an alias.
const Uncategorized = "(uncategorized)"

// SizeBucket groups registrars by domain count.
type SizeBucket string

const (
	SizeAny        SizeBucket = ""
	SizeSmall      SizeBucket = "small"      // < 1,000
	SizeMedium     SizeBucket = "medium"     // 1,000 - 99,999
	SizeLarge      SizeBucket = "large"      // 100,000 - 999,999
	SizeEnterprise SizeBucket = "enterprise" // >= 1,000,000
)

var sizeOrder = []SizeBucket{SizeAny, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise}

// ParseSize parses a bucket name. The empty string and "all" mean any size.
func ParseSize(s string) (SizeBucket, error) {
	switch b := SizeBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case SizeAny, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise:
		return b, nil
	case "all":
		return SizeAny, nil
	}
	return SizeAny, fmt.Errorf("unknown size bucket %q (want small, medium, large or enterprise)", s)
}

// Contains reports whether count falls in the bucket.
func (b SizeBucket) Contains(count int64) bool {
	switch b {
	case SizeSmall:
		return count < 1_000
	case SizeMedium:
		return count >= 1_000 && count < 100_000
	case SizeLarge:
		return count >= 100_000 && count < 1_000_000
	case SizeEnterprise:
		return count >= 1_000_000
	}
	return true
}

// Next cycles through the buckets, returning to SizeAny after the last.
func (b SizeBucket) Next() SizeBucket {
	for i, s := range sizeOrder {
		if s == b {
			return sizeOrder[(i+1)%len(sizeOrder)]
		}
	}
	return SizeAny
}

// Range describes the domain counts the bucket covers.
func (b SizeBucket) Range() string {
	switch b {
	case SizeSmall:
		return "under 1,000"
	case SizeMedium:
		return "1,000 to 99,999"
	case SizeLarge:
		return "100,000 to 999,999"
	case SizeEnterprise:
		return "1,000,000 and up"
	}
	return "any"
}

// SizeBuckets lists the buckets in cycle order, SizeAny first.
func SizeBuckets() []SizeBucket {
	return append([]SizeBucket(nil), sizeOrder...)
}

func (b SizeBucket) String() string {
	if b == SizeAny {
		return "all"
	}
	return string(b)
}

// SortField names a sortable column.
type SortField string

const (
	SortDomainCount SortField = "domain_count"
	SortName        SortField = "name"
	SortIANAID      SortField = "iana_id"
	SortProvider    SortField = "provider"
	SortKind        SortField = "provider_kind"
	SortCategory    SortField = "category"
)

var sortOrder = []SortField{SortDomainCount, SortName, SortIANAID, SortProvider, SortKind, SortCategory}

// ParseSortField parses a column name. The empty string selects the default.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return SortDomainCount, nil
	}
	for _, known := range sortOrder {
		if f == known {
			return f, nil
		}
	}
	return SortDomainCount, fmt.Errorf("unknown sort field %q", s)
}

// SortFields lists the sortable columns in cycle order.
func SortFields() []SortField {
	return append([]SortField(nil), sortOrder...)
}

// Next cycles through the sortable columns.
func (f SortField) Next() SortField {
	for i, s := range sortOrder {
		if s == f {
			return sortOrder[(i+1)%len(sortOrder)]
		}
	}
	return SortDomainCount
}

// Query describes one view of the records.
type Query struct {
	Search   string
	Provider string
	Kind     registrar.Kind
	Size     SizeBucket
	Category string
	Sort     SortField
	Desc     bool
	Page     int
	PageSize int
}

// DefaultQuery is the largest registrars first, first page.
func DefaultQuery() Query {
	return Query{Sort: SortDomainCount, Desc: true, Page: 1, PageSize: DefaultPageSize}
}

// Filtered reports whether any filter other than paging and sorting is set.
func (q Query) Filtered() bool {
	return strings.TrimSpace(q.Search) != "" || q.Provider != "" || q.Kind != "" || q.Size != SizeAny || q.Category != ""
}

// Key identifies the filtered and sorted result set. Paging is not part of
// the key so every page of a view shares one cache entry.
func (q Query) Key() string {
	sort := q.Sort
	if sort == "" {
		sort = SortDomainCount
	}
	return strings.Join([]string{
		"s=" + strings.ToLower(strings.TrimSpace(q.Search)),
		"p=" + q.Provider,
		"k=" + string(q.Kind),
		"z=" + string(q.Size),
		"c=" + q.Category,
		"o=" + string(sort),
		"d=" + strconv.FormatBool(q.Desc),
	}, "|")
}
