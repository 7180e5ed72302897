package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgerror"
)

type htmlPage struct {
	body string
}

func (htmlPage) ContentType() string { return "text/html; charset=utf-8" }

func (p htmlPage) Render(w io.Writer) error {
	_, err := io.WriteString(w, p.body)
	return err
}

func TestRouterRendersRawResponse(t *testing.T) {
	router := NewRouter(&staticGenerator{value: "cid"})
	router.GET("/page", func(ctx context.Context, r *http.Request) (any, error) {
		return htmlPage{body: "<p>hola</p>"}, nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type: %q", got)
	}
	if got := rec.Body.String(); got != "<p>hola</p>" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestRouterRedirect(t *testing.T) {
	router := NewRouter(nil)
	router.POST("/form", func(ctx context.Context, r *http.Request) (any, error) {
		return Redirect{Location: "/next"}, nil
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/form", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/next" {
		t.Fatalf("unexpected location: %q", got)
	}
}

func TestRouterErrorEnvelope(t *testing.T) {
	router := NewRouter(nil)
	router.GET("/missing", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, pkgerror.NewBusiness("upload not found", pkgerror.CodeNotFound)
	})
	router.GET("/boom", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, errors.New("plain")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "upload not found" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
	if body.Error["code"] != "ERROR_CODE_NOT_FOUND" {
		t.Fatalf("unexpected code: %#v", body.Error)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status for plain error: %d", rec.Code)
	}
}

func TestRouterHealth(t *testing.T) {
	router := NewRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
