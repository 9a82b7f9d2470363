package browse

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

var (
	tucows = registrar.Provider{Name: "Tucows", Kind: registrar.KindGateway, Reason: registrar.ReasonExactHost}
	lb     = registrar.Provider{Name: "LogicBoxes", Kind: registrar.KindGateway, Reason: registrar.ReasonHostSuffix}
	self   = registrar.SelfHosted(registrar.ReasonNameHeuristic)
)

func fixture() []registrar.Record {
	return []registrar.Record{
		{IANAID: 1, Name: "Example Registrar", RDAPURL: "https://rdap.example-registrar.com", DomainCount: 2_500_000, Category: "Accredited", Provider: self},
		{IANAID: 2, Name: "Tucows Domains Inc.", RDAPURL: "https://rdap.tucows.com", DomainCount: 50_000, Category: "Accredited", Provider: tucows},
		{IANAID: 3, Name: "Ascio Technologies", RDAPURL: "https://rdap.tucows.com", DomainCount: 300, Provider: tucows, Notes: "Acquired brand"},
		{IANAID: 4, Name: "beget llc", RDAPURL: "https://rdap.publicdomainregistry.com", DomainCount: 150_000, Category: "Reseller", Provider: lb, Website: "https://beget.com"},
		{IANAID: 5, Name: "Zeta Names", RDAPURL: "https://rdap.publicdomainregistry.com", DomainCount: 300, Provider: lb, Status: "Terminated"},
	}
}

func idsOf(rs []registrar.Record) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.IANAID
	}
	return out
}

func TestSizeBucket(t *testing.T) {
	tests := []struct {
		bucket SizeBucket
		count  int64
		want   bool
	}{
		{SizeSmall, 0, true},
		{SizeSmall, 999, true},
		{SizeSmall, 1_000, false},
		{SizeMedium, 1_000, true},
		{SizeMedium, 99_999, true},
		{SizeMedium, 100_000, false},
		{SizeLarge, 100_000, true},
		{SizeLarge, 999_999, true},
		{SizeLarge, 1_000_000, false},
		{SizeEnterprise, 1_000_000, true},
		{SizeAny, 42, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.bucket.Contains(tt.count), "%s %d", tt.bucket, tt.count)
	}
}

func TestParseSizeAndSort(t *testing.T) {
	b, err := ParseSize("Large")
	require.NoError(t, err)
	require.Equal(t, SizeLarge, b)

	b, err = ParseSize("all")
	require.NoError(t, err)
	require.Equal(t, SizeAny, b)

	_, err = ParseSize("huge")
	require.Error(t, err)

	f, err := ParseSortField("")
	require.NoError(t, err)
	require.Equal(t, SortDomainCount, f)

	f, err = ParseSortField("NAME")
	require.NoError(t, err)
	require.Equal(t, SortName, f)

	_, err = ParseSortField("website")
	require.Error(t, err)
}

func TestCycling(t *testing.T) {
	require.Equal(t, SizeSmall, SizeAny.Next())
	require.Equal(t, SizeAny, SizeEnterprise.Next())
	require.Equal(t, SortName, SortDomainCount.Next())
	require.Equal(t, SortDomainCount, SortCategory.Next())

	buckets := SizeBuckets()
	require.Len(t, buckets, 5)
	buckets[0] = SizeLarge
	require.Equal(t, SizeAny, SizeBuckets()[0])
	require.Equal(t, "1,000 to 99,999", SizeMedium.Range())
	require.Equal(t, "any", SizeAny.Range())
	require.Len(t, SortFields(), 6)
}

func TestFilter(t *testing.T) {
	records := fixture()
	tests := []struct {
		name string
		q    Query
		want []int
	}{
		{"no filters", Query{}, []int{1, 2, 3, 4, 5}},
		{"search name case-insensitive", Query{Search: "TUCOWS"}, []int{2, 3}},
		{"search iana id", Query{Search: "4"}, []int{4}},
		{"search url", Query{Search: "publicdomainregistry"}, []int{4, 5}},
		{"search website", Query{Search: "beget.com"}, []int{4}},
		{"search notes", Query{Search: "acquired"}, []int{3}},
		{"search status", Query{Search: "terminated"}, []int{5}},
		{"provider", Query{Provider: "LogicBoxes"}, []int{4, 5}},
		{"kind", Query{Kind: registrar.KindSelfHosted}, []int{1}},
		{"size", Query{Size: SizeSmall}, []int{3, 5}},
		{"category", Query{Category: "accredited"}, []int{1, 2}},
		{"uncategorized", Query{Category: Uncategorized}, []int{3, 5}},
		{"null alias", Query{Category: "null"}, []int{3, 5}},
		{"combined", Query{Provider: "Tucows", Size: SizeMedium}, []int{2}},
		{"nothing", Query{Search: "nomatch"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, idsOf(Filter(records, tt.q)))
		})
	}
}

func TestApply_DefaultSortIsDomainCountDesc(t *testing.T) {
	out := Apply(fixture(), DefaultQuery())
	// 3 and 5 tie on count and fall back to id order
	require.Equal(t, []int{1, 4, 2, 3, 5}, idsOf(out))
}

func TestSort(t *testing.T) {
	records := fixture()

	Sort(records, SortName, false)
	require.Equal(t, []int{3, 4, 1, 2, 5}, idsOf(records))

	Sort(records, SortName, true)
	require.Equal(t, []int{5, 2, 1, 4, 3}, idsOf(records))

	Sort(records, SortProvider, false)
	require.Equal(t, []int{4, 5, 1, 2, 3}, idsOf(records))

	Sort(records, SortIANAID, true)
	require.Equal(t, []int{5, 4, 3, 2, 1}, idsOf(records))

	Sort(records, SortCategory, false)
	require.Equal(t, []int{3, 5, 1, 2, 4}, idsOf(records))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	records := fixture()
	_ = Apply(records, Query{Sort: SortName})
	require.Equal(t, []int{1, 2, 3, 4, 5}, idsOf(records))
}

func TestPaginate(t *testing.T) {
	records := make([]registrar.Record, 45)
	for i := range records {
		records[i].IANAID = i + 1
	}

	p := Paginate(records, 1, 20)
	require.Len(t, p.Records, 20)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 45, p.Total)
	require.Equal(t, 1, p.First())
	require.Equal(t, 20, p.Last())
	require.True(t, p.HasNext())
	require.False(t, p.HasPrev())

	p = Paginate(records, 3, 20)
	require.Len(t, p.Records, 5)
	require.Equal(t, 41, p.First())
	require.Equal(t, 45, p.Last())
	require.False(t, p.HasNext())

	p = Paginate(records, 99, 20)
	require.Equal(t, 3, p.Page)

	p = Paginate(records, 0, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageSize, p.PageSize)

	empty := Paginate(nil, 2, 20)
	require.Equal(t, 1, empty.Page)
	require.Equal(t, 1, empty.TotalPages)
	require.Zero(t, empty.First())
	require.Empty(t, empty.Records)
}

func TestBuildFacets(t *testing.T) {
	f := BuildFacets(fixture())
	require.Equal(t, []string{"LogicBoxes", registrar.SelfHostedName, "Tucows"}, f.Providers)
	require.Equal(t, []registrar.Kind{registrar.KindGateway, registrar.KindSelfHosted}, f.Kinds)
	require.Equal(t, []string{"Accredited", "Reseller"}, f.Categories)
	require.True(t, f.HasUncategorized)
	require.Equal(t, []string{"", "Accredited", "Reseller", Uncategorized}, f.CategoryOptions())
}

func TestQueryKey(t *testing.T) {
	a := Query{Search: " Tucows ", Sort: SortName, Page: 1}
	b := Query{Search: "tucows", Sort: SortName, Page: 4, PageSize: 50}
	require.Equal(t, a.Key(), b.Key())
	require.NotEqual(t, a.Key(), Query{Search: "tucows", Sort: SortName, Desc: true}.Key())
	require.Equal(t, Query{}.Key(), Query{Sort: SortDomainCount}.Key())

	require.False(t, DefaultQuery().Filtered())
	require.True(t, Query{Size: SizeLarge}.Filtered())
}

func TestEngine(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(fixture())
	require.Equal(t, 5, e.Len())

	q := DefaultQuery()
	q.PageSize = 2
	p, err := e.Query(ctx, q)
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, idsOf(p.Records))
	require.Equal(t, 3, p.TotalPages)

	q.Page = 2
	p, err = e.Query(ctx, q)
	require.NoError(t, err)
	require.Equal(t, []int{2, 3}, idsOf(p.Records))

	require.NoError(t, e.Replace(ctx, fixture()[:1]))
	p, err = e.Query(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, p.Page)
	require.Equal(t, []int{1}, idsOf(p.Records))
	require.Equal(t, []string{registrar.SelfHostedName}, e.Facets().Providers)
}

func TestFilter_SubsetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		records := make([]registrar.Record, n)
		for i := range records {
			records[i] = registrar.Record{
				IANAID:      i + 1,
				Name:        rapid.SampledFrom([]string{"Alpha", "beta", "Gamma Inc", ""}).Draw(t, fmt.Sprintf("name%d", i)),
				DomainCount: rapid.Int64Range(0, 2_000_000).Draw(t, fmt.Sprintf("count%d", i)),
				Category:    rapid.SampledFrom([]string{"", "A", "B"}).Draw(t, fmt.Sprintf("cat%d", i)),
				Provider:    rapid.SampledFrom([]registrar.Provider{tucows, lb, self}).Draw(t, fmt.Sprintf("p%d", i)),
			}
		}
		q := Query{
			Search:   rapid.SampledFrom([]string{"", "a", "gamma"}).Draw(t, "search"),
			Size:     rapid.SampledFrom(sizeOrder).Draw(t, "size"),
			Category: rapid.SampledFrom([]string{"", "A", Uncategorized}).Draw(t, "category"),
			Sort:     rapid.SampledFrom(sortOrder).Draw(t, "sort"),
			Desc:     rapid.Bool().Draw(t, "desc"),
		}

		out := Apply(records, q)
		for _, r := range out {
			if !Matches(r, q) {
				t.Fatalf("record %d does not match", r.IANAID)
			}
		}
		if len(out) != len(Filter(records, q)) {
			t.Fatalf("sorting changed the result size")
		}

		size := rapid.IntRange(1, 7).Draw(t, "pageSize")
		seen := 0
		first := Paginate(out, 1, size)
		for page := 1; page <= first.TotalPages; page++ {
			seen += len(Paginate(out, page, size).Records)
		}
		if seen != len(out) {
			t.Fatalf("pages cover %d of %d records", seen, len(out))
		}
	})
}
