package enrich

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

func TestWebsiteFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Sav.com, LLC", "https://www.sav.com"},
		{"Domainshype.com, LLC", "https://www.domainshype.com"},
		{"Tucows Domains Inc. d/b/a Hover", "https://www.hover.com"},
		{"Beget LLC", "https://www.beget.com"},
		{"The Web Company Ltd", ""},
		{"Example Registrar", ""},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, WebsiteFromName(tt.name), tt.name)
	}
}

func TestDeriveWebsites(t *testing.T) {
	records := []registrar.Record{
		{IANAID: 1, Name: "Beget LLC"},
		{IANAID: 2, Name: "Sav.com, LLC", Website: "https://sav.com", WebsiteSource: registrar.WebsiteSourceKnownMapping},
		{IANAID: 3, Name: "Nameless"},
	}

	out, n := DeriveWebsites(records)

	require.Equal(t, 1, n)
	require.Equal(t, "https://www.beget.com", out[0].Website)
	require.Equal(t, registrar.WebsiteSourceNamePattern, out[0].WebsiteSource)
	require.Equal(t, DerivedConfidence, out[0].WebsiteConfidence)

	require.Equal(t, "https://sav.com", out[1].Website)
	require.Equal(t, registrar.WebsiteSourceKnownMapping, out[1].WebsiteSource)

	require.Empty(t, out[2].Website)
	require.Empty(t, records[0].Website)
}
