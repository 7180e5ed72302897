package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgerror"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkglog"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkguid"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/entity"
)

// DefaultUploadTTL is how long an upload stays available when no TTL is configured.
const DefaultUploadTTL = 30 * time.Minute

type Store interface {
	Save(ctx context.Context, upload entity.Upload) error
	Get(ctx context.Context, uploadID string) (entity.Upload, error)
	Delete(ctx context.Context, uploadID string) error
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store      Store
	Normalizer *Normalizer
	Clock      Clock
	ID         pkguid.StringID
	UploadTTL  time.Duration
}

type Usecase struct {
	store      Store
	normalizer *Normalizer
	clock      Clock
	id         pkguid.StringID
	ttl        time.Duration
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	normalizer := dep.Normalizer
	if normalizer == nil {
		normalizer = NewNormalizer()
	}

	ttl := dep.UploadTTL
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}

	return &Usecase{
		store:      dep.Store,
		normalizer: normalizer,
		clock:      clock,
		id:         dep.ID,
		ttl:        ttl,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Extensions lists the file extensions Upload accepts.
func (u *Usecase) Extensions() []string {
	return u.normalizer.Extensions()
}

// Upload normalizes an uploaded file and keeps the table for later requests.
func (u *Usecase) Upload(ctx context.Context, fileName string, data []byte) (UploadResult, error) {
	if u.store == nil || u.id == nil {
		return UploadResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	format, err := u.normalizer.Lookup(fileName)
	if err != nil {
		return UploadResult{}, mapNormalizeErr(err)
	}

	table, err := format.Normalize(ctx, data)
	if err != nil {
		return UploadResult{}, mapNormalizeErr(err)
	}

	now := u.clock.Now()
	upload := entity.Upload{
		ID:        u.id.Generate(),
		FileName:  fileName,
		Format:    format.Name,
		CreatedAt: now,
		ExpiresAt: now.Add(u.ttl),
		Table:     table,
	}
	if err := u.store.Save(ctx, upload); err != nil {
		return UploadResult{}, normalizeErr(err)
	}

	ctx = pkglog.SetUploadID(ctx, upload.ID)
	slog.InfoContext(ctx, "upload normalized",
		"file_name", fileName,
		"format", format.Name,
		"columns", len(table.Columns),
		"rows", table.Len(),
	)

	return UploadResult{
		UploadID:         upload.ID,
		FileName:         fileName,
		Format:           format.Name,
		Columns:          columnInfos(table),
		Rows:             table.Len(),
		Selectable:       SelectableColumns(table),
		DefaultSelection: DefaultSelection(table),
		ExpiresAt:        upload.ExpiresAt,
	}, nil
}

// Table returns one page of rows of a normalized upload.
func (u *Usecase) Table(ctx context.Context, uploadID string, page, pageSize int) (TableResult, error) {
	if page < 1 || pageSize < 1 {
		return TableResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	upload, err := u.get(ctx, uploadID)
	if err != nil {
		return TableResult{}, err
	}

	total := upload.Table.Len()
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	rows := make([][]any, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, upload.Table.Row(i))
	}

	return TableResult{
		UploadID: uploadID,
		FileName: upload.FileName,
		Columns:  columnInfos(upload.Table),
		Rows:     rows,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// Chart builds the line chart of an upload for the given selection.
func (u *Usecase) Chart(ctx context.Context, uploadID string, sel Selection) (ChartResult, error) {
	upload, err := u.get(ctx, uploadID)
	if err != nil {
		return ChartResult{}, err
	}
	return chartOf(upload, sel)
}

// View returns the upload together with its chart, as shown by the HTML page.
func (u *Usecase) View(ctx context.Context, uploadID string, sel Selection) (View, error) {
	upload, err := u.get(ctx, uploadID)
	if err != nil {
		return View{}, err
	}

	res, err := chartOf(upload, sel)
	if err != nil {
		return View{}, err
	}

	return View{Upload: upload, ChartResult: res}, nil
}

// Discard forgets an upload before it expires.
func (u *Usecase) Discard(ctx context.Context, uploadID string) error {
	if uploadID == "" {
		return pkgerror.NewInvalidInput(errors.New("upload_id is required"))
	}
	if err := u.store.Delete(ctx, uploadID); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func chartOf(upload entity.Upload, sel Selection) (ChartResult, error) {
	selected, err := ResolveSelection(upload.Table, sel)
	if err != nil {
		return ChartResult{}, pkgerror.NewInvalidInput(err)
	}

	chart, err := BuildChart(upload.Table, selected)
	if err != nil {
		return ChartResult{}, pkgerror.NewServer(err)
	}

	res := ChartResult{
		UploadID:   upload.ID,
		Selectable: SelectableColumns(upload.Table),
		Selected:   selected,
		Chart:      chart,
	}
	if chart == nil {
		res.Warning = EmptySelectionWarning
	} else if names := nonNumericTraces(chart); len(names) > 0 {
		res.Warning = fmt.Sprintf(NonNumericWarning, strings.Join(names, ", "))
	}

	return res, nil
}

func (u *Usecase) get(ctx context.Context, uploadID string) (entity.Upload, error) {
	if uploadID == "" {
		return entity.Upload{}, pkgerror.NewInvalidInput(errors.New("upload_id is required"))
	}

	upload, err := u.store.Get(ctx, uploadID)
	if err != nil {
		return entity.Upload{}, mapStoreErr(err)
	}

	if !u.clock.Now().Before(upload.ExpiresAt) {
		return entity.Upload{}, mapStoreErr(pkgerror.ErrNotFound)
	}

	return upload, nil
}

// mapNormalizeErr turns normalization failures into client errors whose
// message is the one shown to the user.
func mapNormalizeErr(err error) error {
	var unsupported *UnsupportedFormatError
	if errors.As(err, &unsupported) {
		return pkgerror.NewBusinessCause(err, "Tipo de archivo no soportado.", pkgerror.CodeUnsupportedMedia)
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		msg := fmt.Sprintf("Error al leer el archivo %s: %v", parseErr.Format, parseErr.Err)
		return pkgerror.NewBusinessCause(err, msg, pkgerror.CodeInvalidFormat)
	}

	var missing *MissingColumnError
	if errors.As(err, &missing) {
		msg := fmt.Sprintf("La columna '%s' no se encontró en el archivo %s.", missing.Column, missing.Format)
		return pkgerror.NewBusinessCause(err, msg, pkgerror.CodeInvalidInput)
	}

	return normalizeErr(err)
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("upload not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
