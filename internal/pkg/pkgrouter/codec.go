package pkgrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gigadatagit/AnalyzeSeriesApp/internal/pkg/pkgerror"
)

// Renderer is a response that writes its own body (HTML, images) instead of
// being wrapped in the JSON envelope.
type Renderer interface {
	ContentType() string
	Render(w io.Writer) error
}

// Redirect is a response that sends the client to Location with 303 See Other.
type Redirect struct {
	Location string
}

func isRedirect(resp any) bool {
	_, ok := resp.(Redirect)
	return ok
}

type errorResponse struct {
	Message string            `json:"message"`
	Error   map[string]string `json:"error,omitempty"`
}

type successReponse struct {
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// encodeError writes err as the JSON error envelope. Anything that is not a
// *pkgerror.Error is hidden behind a 500.
func encodeError(ctx context.Context, w http.ResponseWriter, err error) {
	var gerr *pkgerror.Error
	if !errors.As(err, &gerr) {
		slog.ErrorContext(ctx, "server: unexpected error", "error", err)
		writeJSON(w, errorResponse{Message: "Internal server error"}, http.StatusInternalServerError)
		return
	}

	if gerr.Type() == pkgerror.TypeServer {
		slog.ErrorContext(ctx, "server: request failed", "error", gerr.String())
	}

	writeJSON(w, errorResponse{
		Message: gerr.Msg(),
		Error:   map[string]string{"code": gerr.Code().String()},
	}, gerr.StatusCode())
}

// encodeSuccess writes resp. Optional StatusCode, Message and Meta methods
// shape the envelope; a Renderer writes its own body.
func encodeSuccess(ctx context.Context, w http.ResponseWriter, resp any) {
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	code := http.StatusOK
	if sc, ok := resp.(interface{ StatusCode() int }); ok {
		code = sc.StatusCode()
	}

	if rr, ok := resp.(Renderer); ok {
		w.Header().Set("Content-Type", rr.ContentType())
		w.WriteHeader(code)
		if err := rr.Render(w); err != nil {
			slog.ErrorContext(ctx, "server: failed to render response", "error", err)
		}
		return
	}

	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	msg := "request has been successfully"
	if m, ok := resp.(interface{ Message() string }); ok {
		msg = m.Message()
	}

	var meta map[string]any
	if m, ok := resp.(interface{ Meta() map[string]any }); ok {
		meta = m.Meta()
	}

	writeJSON(w, successReponse{Message: msg, Data: resp, Meta: meta}, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
