package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSupplierEmpty(t *testing.T) {
	s := NewSupplier(context.Background(), nil, "http://unused.test")
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Get())
}

func TestSupplierKeepsWorkingProxiesAndRotates(t *testing.T) {
	// A plain HTTP server answers absolute-form proxy requests like a forward proxy would.
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer good.Close()

	refusing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer refusing.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer second.Close()

	s := NewSupplier(context.Background(), []string{good.URL, refusing.URL, second.URL}, "http://target.test/")
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, good.URL, s.Get())
	assert.Equal(t, second.URL, s.Get())
	assert.Equal(t, good.URL, s.Get())
}
