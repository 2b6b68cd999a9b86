package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bookameal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		role   string
		want   models.Principal
		wantOK bool
	}{
		{name: "customer", id: "7", role: "customer", want: models.Principal{ID: 7, Role: models.RoleCustomer}, wantOK: true},
		{name: "caterer any case", id: "3", role: "Caterer", want: models.Principal{ID: 3, Role: models.RoleCaterer}, wantOK: true},
		{name: "role defaults to customer", id: "9", want: models.Principal{ID: 9, Role: models.RoleCustomer}, wantOK: true},
		{name: "no id", role: "customer"},
		{name: "non-numeric id", id: "abc"},
		{name: "zero id", id: "0"},
		{name: "unknown role", id: "4", role: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got models.Principal
				ok  bool
			)
			h := Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = PrincipalFrom(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.id != "" {
				req.Header.Set(UserIDHeader, tt.id)
			}
			if tt.role != "" {
				req.Header.Set(UserRoleHeader, tt.role)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggingAssignsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var seen string
	h := Logging(zap.New(core), noop.NewTracerProvider().Tracer("test"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, seen, fields["request_id"])

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	h := Recovery(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRecoveryLogsRequestID(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	t.Run("inside logging", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		logger := zap.New(core)
		h := Chain(panicking, Logging(logger, noop.NewTracerProvider().Tracer("test")), Recovery(logger))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
		req.Header.Set(RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		panics := logs.FilterMessage("panic while serving request").All()
		require.Len(t, panics, 1)
		assert.Equal(t, "req-42", panics[0].ContextMap()["request_id"])
		access := logs.FilterMessage("request").All()
		require.Len(t, access, 1)
		assert.Equal(t, int64(http.StatusInternalServerError), access[0].ContextMap()["status"])
	})

	t.Run("outside logging", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		logger := zap.New(core)
		h := Chain(panicking, Recovery(logger), Logging(logger, noop.NewTracerProvider().Tracer("test")))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		panics := logs.FilterMessage("panic while serving request").All()
		require.Len(t, panics, 1)
		id := panics[0].ContextMap()["request_id"]
		assert.NotEmpty(t, id)
		assert.Equal(t, rec.Header().Get(RequestIDHeader), id)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mark("a"), mark("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b"}, order)
}
