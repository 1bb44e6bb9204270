package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method, route, status string
}

type fakeMetrics struct {
	observed []observation
}

func (f *fakeMetrics) ObserveHTTP(method, route, status string, _ time.Duration) {
	f.observed = append(f.observed, observation{method: method, route: route, status: status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/appointments/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/appointments/42", nil))

	require.Len(t, m.observed, 1)
	assert.Equal(t, observation{method: "GET", route: "/appointments/{id}", status: "404"}, m.observed[0])
}

func TestUserIdentity(t *testing.T) {
	var (
		gotID int64
		gotOK bool
	)
	h := UserIdentity(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetUserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "17")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, gotOK)
	assert.Equal(t, int64(17), gotID)

	gotOK = false
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, gotOK)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
