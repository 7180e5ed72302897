package inbound

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgerror"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkglog"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgrouter"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/render"
	"github.com/gigadatagit/AnalyzeSeriesApp/internal/series/usecase"
)

const defaultPageSize = 50

type HTTPEndpoint struct {
	uc   uc
	opts Options
}

// Home shows the upload form.
func (h *HTTPEndpoint) Home(ctx context.Context, r *http.Request) (any, error) {
	return h.homePage(http.StatusOK, "")
}

// UploadForm receives the form upload and sends the browser to the view page.
// Failures are shown on the form itself.
func (h *HTTPEndpoint) UploadForm(ctx context.Context, r *http.Request) (any, error) {
	fileName, data, err := h.readUpload(r)
	if err == nil {
		var res usecase.UploadResult
		res, err = h.uc.Upload(ctx, fileName, data)
		if err == nil {
			return pkgrouter.Redirect{Location: "/uploads/" + url.PathEscape(res.UploadID) + "/view"}, nil
		}
	}

	var perr *pkgerror.Error
	if !errors.As(err, &perr) || perr.Type() == pkgerror.TypeServer {
		return nil, err
	}

	slog.WarnContext(ctx, "upload rejected", "code", perr.Code().String(), "error", err)
	return h.homePage(perr.StatusCode(), perr.Msg())
}

// View shows the table, the column selection and the chart of an upload.
func (h *HTTPEndpoint) View(ctx context.Context, r *http.Request) (any, error) {
	ctx, uploadID := uploadContext(ctx)
	query := r.URL.Query()

	sel := usecase.Selection{Explicit: query.Get("selection") != ""}
	sel.Columns = nonEmpty(query["columns"])

	page, _, err := h.parsePagination(query.Get("page"), "")
	if err != nil {
		return nil, err
	}

	view, err := h.uc.View(ctx, uploadID, sel)
	if err != nil {
		return nil, err
	}

	table, err := h.uc.Table(ctx, uploadID, page, defaultPageSize)
	if err != nil {
		return nil, err
	}

	resp, err := renderView(newViewPage(view, table, query), view.Chart)
	if err != nil {
		return nil, pkgerror.NewServer(err)
	}
	return resp, nil
}

// Upload normalizes a file sent as multipart "file" or as the raw body with
// the name in ?filename=.
func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	fileName, data, err := h.readUpload(r)
	if err != nil {
		return nil, err
	}

	res, err := h.uc.Upload(ctx, fileName, data)
	if err != nil {
		return nil, err
	}

	return UploadResponse{
		UploadID:         res.UploadID,
		FileName:         res.FileName,
		Format:           res.Format,
		Columns:          toColumns(res.Columns),
		Rows:             res.Rows,
		Selectable:       res.Selectable,
		DefaultSelection: res.DefaultSelection,
		ExpiresAt:        res.ExpiresAt,
	}, nil
}

func (h *HTTPEndpoint) Table(ctx context.Context, r *http.Request) (any, error) {
	ctx, uploadID := uploadContext(ctx)
	query := r.URL.Query()
	page, pageSize, err := h.parsePagination(query.Get("page"), query.Get("page_size"))
	if err != nil {
		return nil, err
	}

	res, err := h.uc.Table(ctx, uploadID, page, pageSize)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, len(res.Rows))
	for i, row := range res.Rows {
		rows[i] = jsonValues(row)
	}

	return TableResponse{
		UploadID: res.UploadID,
		FileName: res.FileName,
		Columns:  toColumns(res.Columns),
		Rows:     rows,
		page:     res.Page,
		pageSize: res.PageSize,
		total:    res.Total,
	}, nil
}

func (h *HTTPEndpoint) Chart(ctx context.Context, r *http.Request) (any, error) {
	ctx, uploadID := uploadContext(ctx)
	res, err := h.uc.Chart(ctx, uploadID, querySelection(r.URL.Query()))
	if err != nil {
		return nil, err
	}
	return toHTTPChart(res), nil
}

func (h *HTTPEndpoint) ChartHTML(ctx context.Context, r *http.Request) (any, error) {
	ctx, uploadID := uploadContext(ctx)
	res, err := h.uc.Chart(ctx, uploadID, querySelection(r.URL.Query()))
	if err != nil {
		return nil, err
	}

	if res.Chart == nil {
		page, err := executePage(http.StatusOK, "message", messagePage{Title: pageTitle, Warning: res.Warning})
		if err != nil {
			return nil, pkgerror.NewServer(err)
		}
		return page, nil
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, res.Chart, pageTitle, ""); err != nil {
		return nil, pkgerror.NewServer(err)
	}
	return htmlPage{status: http.StatusOK, body: buf.Bytes()}, nil
}

func (h *HTTPEndpoint) ChartPNG(ctx context.Context, r *http.Request) (any, error) {
	ctx, uploadID := uploadContext(ctx)
	query := r.URL.Query()

	width, err := parseDimension(query.Get("width"), h.opts.PNGWidth)
	if err != nil {
		return nil, err
	}
	height, err := parseDimension(query.Get("height"), h.opts.PNGHeight)
	if err != nil {
		return nil, err
	}

	res, err := h.uc.Chart(ctx, uploadID, querySelection(query))
	if err != nil {
		return nil, err
	}
	if res.Chart == nil {
		return nil, pkgerror.NewBusiness(res.Warning, pkgerror.CodeInvalidInput)
	}

	var buf bytes.Buffer
	if err := render.PNG(&buf, res.Chart, width, height); err != nil {
		if errors.Is(err, render.ErrAxisNotTime) || errors.Is(err, render.ErrNotEnoughPoints) {
			return nil, pkgerror.NewBusinessCause(err, err.Error(), pkgerror.CodeInvalidInput)
		}
		return nil, pkgerror.NewServer(err)
	}

	return pngImage{data: buf.Bytes()}, nil
}

func (h *HTTPEndpoint) Discard(ctx context.Context, r *http.Request) (any, error) {
	ctx, uploadID := uploadContext(ctx)
	if err := h.uc.Discard(ctx, uploadID); err != nil {
		return nil, err
	}
	return nil, nil
}

// uploadContext tags ctx with the ":id" path parameter for logging.
func uploadContext(ctx context.Context) (context.Context, string) {
	uploadID := pkgrouter.GetParam(ctx, "id")
	return pkglog.SetUploadID(ctx, uploadID), uploadID
}

func (h *HTTPEndpoint) homePage(status int, msg string) (any, error) {
	page, err := executePage(status, "home", homePage{
		Title:  pageTitle,
		Accept: strings.Join(h.uc.Extensions(), ","),
		Error:  msg,
	})
	if err != nil {
		return nil, pkgerror.NewServer(err)
	}
	return page, nil
}

func (h *HTTPEndpoint) parsePagination(pageRaw, sizeRaw string) (int, int, error) {
	page := 1
	pageSize := defaultPageSize

	if pageRaw != "" {
		value, err := strconv.Atoi(pageRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page"))
		}
		page = value
	}

	if sizeRaw != "" {
		value, err := strconv.Atoi(sizeRaw)
		if err != nil || value < 1 {
			return 0, 0, pkgerror.NewInvalidInput(errors.New("invalid page_size"))
		}
		pageSize = min(value, h.opts.MaxPageSize)
	}

	return page, pageSize, nil
}

func parseDimension(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 || value > 4096 {
		return 0, pkgerror.NewInvalidInput(errors.New("invalid image size"))
	}
	return value, nil
}

// querySelection reads repeated ?columns= values. Without the key the default
// selection applies; ?columns= alone selects nothing.
func querySelection(query url.Values) usecase.Selection {
	values, ok := query["columns"]
	return usecase.Selection{Columns: nonEmpty(values), Explicit: ok}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (h *HTTPEndpoint) readUpload(r *http.Request) (string, []byte, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil && strings.EqualFold(mediaType, "multipart/form-data") {
			return h.readMultipartFile(r)
		}
	}

	fileName := strings.TrimSpace(r.URL.Query().Get("filename"))
	if fileName == "" {
		return "", nil, pkgerror.NewInvalidInput(errors.New("filename is required"))
	}
	if r.Body == nil {
		return "", nil, pkgerror.NewInvalidInput(errors.New("empty request body"))
	}

	data, err := h.readLimited(r.Body)
	if err != nil {
		return "", nil, err
	}
	return fileName, data, nil
}

func (h *HTTPEndpoint) readMultipartFile(r *http.Request) (string, []byte, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return "", nil, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", nil, pkgerror.NewInvalidInput(errors.New("file part is required"))
			}
			return "", nil, pkgerror.NewInvalidFormat()
		}

		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}

		fileName := part.FileName()
		data, err := h.readLimited(part)
		_ = part.Close()
		if err != nil {
			return "", nil, err
		}
		if fileName == "" {
			return "", nil, pkgerror.NewInvalidInput(errors.New("file name is required"))
		}
		return fileName, data, nil
	}
}

func (h *HTTPEndpoint) readLimited(src io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, h.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, pkgerror.NewInvalidFormat()
	}
	if int64(len(data)) > h.opts.MaxUploadBytes {
		msg := fmt.Sprintf("El archivo supera el tamaño máximo de %d bytes.", h.opts.MaxUploadBytes)
		return nil, pkgerror.NewBusinessCause(pkgerror.ErrTooLarge, msg, pkgerror.CodeTooLarge)
	}
	return data, nil
}
