package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iaconlabs/doze/router"
)

const (
	concurrentRequests = 50
	firstLetterRune    = 65 // 'A'
)

// RunRouterContract executes the functional contract every [router.Router]
// must satisfy to back a doze Application. Each sub-test gets a fresh router
// from factory.
func RunRouterContract(t *testing.T, factory func() router.Router) {
	t.Run("Path Parameters", func(t *testing.T) {
		testPathParameters(t, factory())
	})

	t.Run("HEAD Routed To GET", func(t *testing.T) {
		testHeadRoutedToGet(t, factory())
	})

	t.Run("Middleware Onion Order", func(t *testing.T) {
		testOnionOrder(t, factory())
	})

	t.Run("Middleware Short-circuit", func(t *testing.T) {
		testShortCircuit(t, factory())
	})

	t.Run("Group Isolation", func(t *testing.T) {
		testGroupIsolation(t, factory())
	})

	t.Run("Context Propagation", func(t *testing.T) {
		testContextPropagation(t, factory())
	})

	t.Run("Wildcard Routes", func(t *testing.T) {
		testWildcard(t, factory())
	})

	t.Run("ANY And Custom Methods", func(t *testing.T) {
		testAnyAndCustomMethods(t, factory())
	})

	t.Run("Concurrent Parameter Isolation", func(t *testing.T) {
		testConcurrentParams(t, factory())
	})
}

func serve(adp router.Router, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	adp.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func testPathParameters(t *testing.T, adp router.Router) {
	adp.GET("/org/:org_id/repo/:repo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(adp.Param(r, "org_id") + "|" + adp.Param(r, "repo")))
	})
	adp.GET("/file/:name.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(adp.Param(r, "name")))
	})

	if got := serve(adp, http.MethodGet, "/org/acme/repo/doze?tab=code").Body.String(); got != "acme|doze" {
		t.Errorf("Expected acme|doze, got %s", got)
	}
	if got := serve(adp, http.MethodGet, "/file/report").Body.String(); got != "report" {
		t.Errorf("Expected a dotted parameter name to resolve by its base name, got %s", got)
	}
	if got := serve(adp, http.MethodGet, "/nowhere").Code; got != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown route, got %d", got)
	}
}

func testHeadRoutedToGet(t *testing.T, adp router.Router) {
	adp.GET("/resource", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Resource", "yes")
	})

	rec := serve(adp, http.MethodHead, "/resource")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Resource") != "yes" {
		t.Errorf("HEAD did not reach the GET route: status %d", rec.Code)
	}
}

func testOnionOrder(t *testing.T, adp router.Router) {
	order := ""
	mw := func(tag string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order += "(" + tag
				next.ServeHTTP(w, r)
				order += tag + ")"
			})
		}
	}

	adp.Use(mw("1"))
	g := adp.Group("/g")
	g.Use(mw("2"))
	g.GET("/end", func(_ http.ResponseWriter, _ *http.Request) {
		order += "X"
	}, mw("3"))

	serve(adp, http.MethodGet, "/g/end")

	if expected := "(1(2(3X3)2)1)"; order != expected {
		t.Errorf("Wrong middleware order.\nExpected: %s\nGot: %s", expected, order)
	}
}

func testShortCircuit(t *testing.T, adp router.Router) {
	reached := false
	deny := func(_ http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	adp.GET("/secret", func(_ http.ResponseWriter, _ *http.Request) { reached = true }, deny)

	if rec := serve(adp, http.MethodGet, "/secret"); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if reached {
		t.Error("Handler executed despite middleware abort")
	}
}

func testGroupIsolation(t *testing.T, adp router.Router) {
	var seen []string
	admin := adp.Group("/admin")
	admin.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, "admin")
			next.ServeHTTP(w, r)
		})
	})
	admin.GET("/dashboard", func(_ http.ResponseWriter, _ *http.Request) {})
	adp.Group("/public/").GET("/home", func(_ http.ResponseWriter, _ *http.Request) {})

	if rec := serve(adp, http.MethodGet, "/public/home"); rec.Code != http.StatusOK {
		t.Errorf("Group prefix with trailing slash generated an invalid route: %d", rec.Code)
	}
	if len(seen) > 0 {
		t.Error("Admin middleware leaked to the public group")
	}

	serve(adp, http.MethodGet, "/admin/dashboard")
	if len(seen) != 1 {
		t.Errorf("Admin middleware ran %d times", len(seen))
	}
}

func testContextPropagation(t *testing.T, adp router.Router) {
	type ctxKey string
	const key ctxKey = "user"

	adp.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), key, "sleeper")))
		})
	})
	adp.GET("/profile/:id", func(w http.ResponseWriter, r *http.Request) {
		val, _ := r.Context().Value(key).(string)
		_, _ = w.Write([]byte(val + ":" + adp.Param(r, "id")))
	})

	if got := serve(adp, http.MethodGet, "/profile/7").Body.String(); got != "sleeper:7" {
		t.Errorf("Context lost. Expected sleeper:7, got %s", got)
	}
}

func testWildcard(t *testing.T, adp router.Router) {
	adp.GET("/static/*path", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(adp.Param(r, "path")))
	})
	adp.GET("/assets/*", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(adp.Param(r, "*")))
	})

	if got := serve(adp, http.MethodGet, "/static/img/logo").Body.String(); got != "img/logo" {
		t.Errorf("Named wildcard failed. Got: %s", got)
	}
	if got := serve(adp, http.MethodGet, "/assets/app/main").Body.String(); got != "app/main" {
		t.Errorf("Anonymous wildcard failed. Got: %s", got)
	}
}

func testAnyAndCustomMethods(t *testing.T, adp router.Router) {
	adp.ANY("/any", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Method))
	})
	adp.Handle("PURGE", "/cache", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("purged"))
	}))
	adp.HandleFunc(http.MethodPatch, "/patch", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("patched"))
	})

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions} {
		if got := serve(adp, method, "/any").Body.String(); got != method {
			t.Errorf("ANY failed for %s, got %s", method, got)
		}
	}
	if got := serve(adp, "PURGE", "/cache").Body.String(); got != "purged" {
		t.Errorf("Custom method PURGE failed. Got: %s", got)
	}
	if got := serve(adp, http.MethodPatch, "/patch").Body.String(); got != "patched" {
		t.Errorf("HandleFunc failed. Got: %s", got)
	}
}

func testConcurrentParams(t *testing.T, adp router.Router) {
	adp.GET("/worker/:id", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(adp.Param(r, "id")))
	})

	results := make(chan bool, concurrentRequests)
	for i := range concurrentRequests {
		go func(val string) {
			results <- strings.TrimSpace(serve(adp, http.MethodGet, "/worker/"+val).Body.String()) == val
		}(string(rune(i + firstLetterRune)))
	}

	for range concurrentRequests {
		if !<-results {
			t.Error("Parameters leaked between parallel requests")
			break
		}
	}
}
