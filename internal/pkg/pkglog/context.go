package pkglog

import "context"

type contextKey int

const (
	correlationIDKey contextKey = iota
	uploadIDKey
)

// CorrelationID returns the correlation ID stored in ctx by the HTTP middleware.
func CorrelationID(ctx context.Context) (string, bool) {
	cid, ok := ctx.Value(correlationIDKey).(string)
	return cid, ok && cid != ""
}

// SetCorrelationID stores cid in ctx. Every record logged with ctx carries it as "_cID".
func SetCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey, cid)
}

// UploadID returns the upload the current request works on.
func UploadID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(uploadIDKey).(string)
	return id, ok && id != ""
}

// SetUploadID stores the upload ID in ctx so it is logged as "upload_id".
func SetUploadID(ctx context.Context, uploadID string) context.Context {
	return context.WithValue(ctx, uploadIDKey, uploadID)
}
