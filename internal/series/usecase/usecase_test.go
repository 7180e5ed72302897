package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgerror"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

type testStore struct {
	mu      sync.RWMutex
	uploads map[string]entity.Upload
}

func newTestStore() *testStore {
	return &testStore{uploads: make(map[string]entity.Upload)}
}

func (s *testStore) Save(ctx context.Context, upload entity.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[upload.ID] = upload
	return nil
}

func (s *testStore) Get(ctx context.Context, uploadID string) (entity.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	upload, ok := s.uploads[uploadID]
	if !ok {
		return entity.Upload{}, pkgerror.ErrNotFound
	}
	return upload, nil
}

func (s *testStore) Delete(ctx context.Context, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.uploads[uploadID]; !ok {
		return pkgerror.ErrNotFound
	}
	delete(s.uploads, uploadID)
	return nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

type testID struct {
	next int
}

func (g *testID) Generate() string {
	g.next++
	return "upload-" + string(rune('0'+g.next))
}

const sampleText = "Fecha/hora;A;B;C;D\n" +
	"01/02/23 10:00:00;1.5;2.5;3;x\n" +
	"01/02/23 10:01:00;1.6;2.4;4;y\n" +
	"01/02/23 10:02:00;1.7;2.3;5;z\n"

func newTestUsecase(clock *testClock) (*Usecase, *testStore) {
	st := newTestStore()
	return New(Dependency{
		Store:     st,
		Clock:     clock,
		ID:        &testID{},
		UploadTTL: time.Hour,
	}), st
}

func statusOf(t *testing.T, err error) (int, string) {
	t.Helper()
	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *pkgerror.Error, got %T: %v", err, err)
	}
	return perr.StatusCode(), perr.Msg()
}

func TestUpload(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	uc, st := newTestUsecase(clock)

	res, err := uc.Upload(context.Background(), "medidas.txt", []byte(sampleText))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if res.UploadID != "upload-1" || res.Format != "TXT" || res.Rows != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !reflect.DeepEqual(res.Selectable, []string{"A", "B", "C", "D"}) {
		t.Fatalf("unexpected selectable: %v", res.Selectable)
	}
	if !reflect.DeepEqual(res.DefaultSelection, []string{"A", "B", "C"}) {
		t.Fatalf("unexpected default selection: %v", res.DefaultSelection)
	}
	if res.Columns[0] != (ColumnInfo{Name: "Fecha/hora", Kind: entity.KindTime}) {
		t.Fatalf("unexpected first column: %+v", res.Columns[0])
	}
	if !res.ExpiresAt.Equal(clock.now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", res.ExpiresAt)
	}
	if _, ok := st.uploads["upload-1"]; !ok {
		t.Fatal("upload not stored")
	}
}

func TestUploadErrors(t *testing.T) {
	uc, _ := newTestUsecase(&testClock{now: time.Now()})
	ctx := context.Background()

	cases := []struct {
		name     string
		fileName string
		data     string
		status   int
		message  string
	}{
		{
			name:     "unsupported",
			fileName: "medidas.csv",
			data:     sampleText,
			status:   http.StatusUnsupportedMediaType,
			message:  "Tipo de archivo no soportado.",
		},
		{
			name:     "missing column",
			fileName: "medidas.txt",
			data:     "A;B\n1;2\n",
			status:   http.StatusUnprocessableEntity,
			message:  "La columna 'Fecha/hora' no se encontró en el archivo TXT.",
		},
		{
			name:     "parse error",
			fileName: "medidas.txt",
			data:     "Fecha/hora;A\n01/02/23 10:00:00;1;2\n",
			status:   http.StatusBadRequest,
			message:  "Error al leer el archivo TXT: expected 2 fields in line 2, saw 3",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Upload(ctx, tc.fileName, []byte(tc.data))
			status, msg := statusOf(t, err)
			if status != tc.status || msg != tc.message {
				t.Fatalf("got %d %q, want %d %q", status, msg, tc.status, tc.message)
			}
		})
	}
}

func TestUploadKeepsDomainError(t *testing.T) {
	uc, _ := newTestUsecase(&testClock{now: time.Now()})

	_, err := uc.Upload(context.Background(), "medidas.txt", []byte("A;B\n1;2\n"))
	var missing *MissingColumnError
	if !errors.As(err, &missing) {
		t.Fatalf("domain error not reachable: %v", err)
	}
}

func TestTable(t *testing.T) {
	uc, _ := newTestUsecase(&testClock{now: time.Now()})
	ctx := context.Background()

	res, err := uc.Upload(ctx, "medidas.txt", []byte(sampleText))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	page, err := uc.Table(ctx, res.UploadID, 2, 2)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if page.Total != 3 || len(page.Rows) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Rows[0][1] != 1.7 || page.Rows[0][4] != "z" {
		t.Fatalf("unexpected row: %v", page.Rows[0])
	}

	beyond, err := uc.Table(ctx, res.UploadID, 5, 2)
	if err != nil || len(beyond.Rows) != 0 {
		t.Fatalf("page beyond the end = %+v, %v", beyond, err)
	}

	if _, err := uc.Table(ctx, res.UploadID, 0, 2); err == nil {
		t.Fatal("expected error for invalid page")
	}
}

func TestChart(t *testing.T) {
	uc, _ := newTestUsecase(&testClock{now: time.Now()})
	ctx := context.Background()

	res, err := uc.Upload(ctx, "medidas.txt", []byte(sampleText))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	chart, err := uc.Chart(ctx, res.UploadID, Selection{})
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if len(chart.Chart.Traces) != 3 || chart.Warning != "" {
		t.Fatalf("unexpected default chart: %+v", chart)
	}

	chart, err = uc.Chart(ctx, res.UploadID, Selection{Explicit: true})
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if chart.Chart != nil || chart.Warning != EmptySelectionWarning {
		t.Fatalf("expected warning, got %+v", chart)
	}

	_, err = uc.Chart(ctx, res.UploadID, Selection{Columns: []string{"nope"}, Explicit: true})
	if status, _ := statusOf(t, err); status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", status)
	}

	chart, err = uc.Chart(ctx, res.UploadID, Selection{Columns: []string{"A", "D"}, Explicit: true})
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if chart.Chart == nil || chart.Warning != fmt.Sprintf(NonNumericWarning, "D") {
		t.Fatalf("expected text column warning, got %q", chart.Warning)
	}
}

func TestView(t *testing.T) {
	uc, _ := newTestUsecase(&testClock{now: time.Now()})
	ctx := context.Background()

	res, err := uc.Upload(ctx, "medidas.txt", []byte(sampleText))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	view, err := uc.View(ctx, res.UploadID, Selection{Columns: []string{"D"}, Explicit: true})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Upload.FileName != "medidas.txt" || !reflect.DeepEqual(view.Selected, []string{"D"}) {
		t.Fatalf("unexpected view: %+v", view.ChartResult)
	}
}

func TestUploadExpires(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	uc, _ := newTestUsecase(clock)
	ctx := context.Background()

	res, err := uc.Upload(ctx, "medidas.txt", []byte(sampleText))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	clock.now = clock.now.Add(time.Hour)
	_, err = uc.Chart(ctx, res.UploadID, Selection{})
	if status, _ := statusOf(t, err); status != http.StatusNotFound {
		t.Fatalf("expired upload status = %d", status)
	}
}

func TestDiscard(t *testing.T) {
	uc, st := newTestUsecase(&testClock{now: time.Now()})
	ctx := context.Background()

	res, err := uc.Upload(ctx, "medidas.txt", []byte(sampleText))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := uc.Discard(ctx, res.UploadID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if len(st.uploads) != 0 {
		t.Fatal("upload still stored")
	}

	err = uc.Discard(ctx, res.UploadID)
	if status, _ := statusOf(t, err); status != http.StatusNotFound {
		t.Fatalf("second discard status = %d", status)
	}
}

func TestUploadMissingDependency(t *testing.T) {
	uc := New(Dependency{})

	_, err := uc.Upload(context.Background(), "medidas.txt", []byte(sampleText))
	if status, _ := statusOf(t, err); status != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", status)
	}
}
