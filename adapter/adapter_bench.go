package adapter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iaconlabs/doze/router"
)

// RunSuiteBenchmarks measures the dispatch overhead of a [router.Router].
// wrap lets callers put an Application or other middleware in front of the
// router; pass nil to benchmark the bare router.
func RunSuiteBenchmarks(b *testing.B, factory func() router.Router, wrap func(router.Router) http.Handler) {
	if wrap == nil {
		wrap = func(r router.Router) http.Handler { return r }
	}

	b.Run("Static/Simple", func(b *testing.B) {
		adp := factory()
		adp.GET("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		runBenchmark(b, wrap(adp), "/health")
	})

	b.Run("Param/Single", func(b *testing.B) {
		adp := factory()
		adp.GET("/user/:id", func(_ http.ResponseWriter, r *http.Request) {
			_ = adp.Param(r, "id")
		})
		runBenchmark(b, wrap(adp), "/user/12345")
	})

	b.Run("Param/Extension", func(b *testing.B) {
		adp := factory()
		adp.GET("/user/:id", func(_ http.ResponseWriter, r *http.Request) {
			_ = adp.Param(r, "id")
		})
		runBenchmark(b, wrap(adp), "/user/12345.json")
	})
}

func runBenchmark(b *testing.B, h http.Handler, target string) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
