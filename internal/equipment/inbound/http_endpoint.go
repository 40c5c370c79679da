package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgrouter"
)

const (
	maxLoginBytes = 64 << 10
	// room for multipart boundaries and small form fields next to the file
	multipartOverhead = 1 << 20
)

var (
	errFileRequired   = pkgerror.NewValidation("file is required", nil)
	errUploadNotFound = pkgerror.NewNotFound("upload not found")
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Login(ctx context.Context, r *http.Request) (any, error) {
	var req LoginRequest
	body := http.MaxBytesReader(nil, r.Body, maxLoginBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, decodeErr(err)
	}

	session, err := h.uc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt.UTC(),
	}, nil
}

func (h *HTTPEndpoint) Logout(ctx context.Context, r *http.Request) (any, error) {
	id, _ := pkgauth.GetIdentity(ctx)
	if err := h.uc.Logout(ctx, id.Token); err != nil {
		return nil, err
	}

	return NoContent{}, nil
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	id, _ := pkgauth.GetIdentity(ctx)

	r.Body = http.MaxBytesReader(nil, r.Body, h.uc.MaxBytes()+multipartOverhead)

	reader, filename, cleanup, err := extractCSVReader(r)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	record, err := h.uc.Upload(ctx, id.Username, filename, reader)
	if err != nil {
		return nil, err
	}

	return CreatedUpload{toUploadResponse(record)}, nil
}

func (h *HTTPEndpoint) History(ctx context.Context, r *http.Request) (any, error) {
	id, _ := pkgauth.GetIdentity(ctx)

	records, err := h.uc.History(ctx, id.Username)
	if err != nil {
		return nil, err
	}

	items := make(HistoryResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, toUploadResponse(rec))
	}

	return items, nil
}

func (h *HTTPEndpoint) Detail(ctx context.Context, r *http.Request) (any, error) {
	id, _ := pkgauth.GetIdentity(ctx)

	uploadID, ok := pkgrouter.GetInt64Param(ctx, "id")
	if !ok {
		return nil, errUploadNotFound
	}

	record, err := h.uc.Detail(ctx, id.Username, uploadID)
	if err != nil {
		return nil, err
	}

	return toUploadResponse(record), nil
}

// Download streams the stored CSV of one of the caller's uploads.
func (h *HTTPEndpoint) Download(ctx context.Context, r *http.Request) (any, error) {
	id, _ := pkgauth.GetIdentity(ctx)

	uploadID, ok := pkgrouter.GetInt64Param(ctx, "id")
	if !ok {
		return nil, errUploadNotFound
	}

	record, body, err := h.uc.Open(ctx, id.Username, uploadID)
	if err != nil {
		return nil, err
	}

	return pkgrouter.Stream{
		ContentType: "text/csv; charset=utf-8",
		FileName:    record.FileName,
		Body:        body,
	}, nil
}

// decodeErr maps a failed body read to 413 when the size cap tripped.
func decodeErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerror.NewTooLarge(err)
	}
	return pkgerror.NewInvalidFormat()
}

// extractCSVReader returns the uploaded file and its client filename. A
// multipart form must carry the file in the "file" part; a text/csv body is
// taken as the file itself, named by the "filename" query parameter.
func extractCSVReader(r *http.Request) (io.Reader, string, func(), error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, "", func() {}, errFileRequired
	}

	switch strings.ToLower(mediaType) {
	case "multipart/form-data":
		return extractMultipartFile(r)
	case "text/csv", "application/octet-stream":
		return r.Body, r.URL.Query().Get("filename"), func() {}, nil
	default:
		return nil, "", func() {}, errFileRequired
	}
}

func extractMultipartFile(r *http.Request) (io.Reader, string, func(), error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, "", func() {}, pkgerror.NewInvalidFormat()
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, "", func() {}, errFileRequired
			}
			return nil, "", func() {}, decodeErr(err)
		}

		if part.FormName() == "file" {
			return part, part.FileName(), func() { _ = part.Close() }, nil
		}
		_ = part.Close()
	}
}
