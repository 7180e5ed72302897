package series

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgconfig"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgrouter"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgroutine"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkguid"
)

const testConfig = `
modules:
  series:
    enabled: true
    max_upload_bytes: 1024
    upload_ttl: 5m
    sweep_interval: 10ms
    formats:
      txt:
        timestamp_column: "Fecha"
`

func TestModuleWiring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defer cfg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	runner := pkgroutine.NewManager(2)
	router := pkgrouter.NewRouter(pkguid.NewUUID())

	closer, err := New(Dependency{
		Config:    cfg,
		Goroutine: runner,
		Router:    router,
		Context:   ctx,
	})
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/uploads?filename=datos.txt", strings.NewReader("Fecha;A\n01/02/23 10:00:00;1\n"))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("configured timestamp column not used: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data struct {
			UploadID string `json:"upload_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil || created.Data.UploadID == "" {
		t.Fatalf("decode upload: %v %s", err, rec.Body.String())
	}
	uploadID := created.Data.UploadID

	big := strings.NewReader("Fecha;A\n" + strings.Repeat("01/02/23 10:00:00;1\n", 100))
	req = httptest.NewRequest(http.MethodPost, "/uploads?filename=datos.txt", big)
	req.Header.Set("Content-Type", "application/octet-stream")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("upload limit not applied: %d", rec.Code)
	}

	cancel()
	if err := runner.Wait(); err != nil {
		t.Fatalf("runner wait: %v", err)
	}
	if err := closer(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/uploads/"+uploadID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("upload still served after close: %d", rec.Code)
	}
}

func TestFormatsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tz: UTC\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	defer cfg.Close()

	got := formats(cfg)
	if len(got) != 2 || got[0].TimestampColumn != "Fecha/hora" || got[1].TimestampColumn != "Hora [UTC]" {
		t.Fatalf("unexpected formats: %+v", got)
	}
}
