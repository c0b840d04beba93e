package crawler

import (
	"context"
	"net/http"
	"testing"

	"tradefeed/crawler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyFromLink(t *testing.T) {
	tests := []struct {
		link   string
		want   domain.Company
		wantOK bool
	}{
		{
			link:   "https://www.example.com/shop/acme-precision-TOOLS-12345.html",
			want:   domain.Company{ID: "12345", Name: "Acme Precision Tools", Link: "https://www.example.com/shop/acme-precision-TOOLS-12345.html"},
			wantOK: true,
		},
		{
			link:   "https://www.example.com/beta-7.html",
			want:   domain.Company{ID: "7", Name: "Beta", Link: "https://www.example.com/beta-7.html"},
			wantOK: true,
		},
		{link: "https://www.example.com/profile/gamma", wantOK: false},
		{link: "https://www.example.com/shop/delta-12.htm", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			got, ok := CompanyFromLink(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveAll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/profile/beta", writeHTML(`<html><head>
		<meta name="CompanyID" content="4411">
		<meta name="CompanyName" content="Beta Trading Co.">
	</head></html>`))
	mux.HandleFunc("/profile/noid", writeHTML(`<html><head><meta name="CompanyName" content="Ghost"></head></html>`))
	mux.HandleFunc("/profile/down", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	site, srv := newTestSite(t, mux)
	resolver := NewCompanyResolver(site, 0)
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, srv.URL+"/profile/noid")
	assert.ErrorIs(t, err, domain.ErrUnresolvableCompany)

	_, err = resolver.Resolve(ctx, srv.URL+"/profile/down")
	assert.ErrorIs(t, err, domain.ErrFetchExhausted)

	companies, err := resolver.ResolveAll(ctx, []string{
		srv.URL + "/shop/acme-tools-12.html",
		srv.URL + "/profile/beta",
		srv.URL + "/profile/noid",
		srv.URL + "/profile/down",
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.Company{
		{ID: "12", Name: "Acme Tools", Link: srv.URL + "/shop/acme-tools-12.html"},
		{ID: "4411", Name: "Beta Trading Co.", Link: srv.URL + "/profile/beta"},
	}, companies)
}
