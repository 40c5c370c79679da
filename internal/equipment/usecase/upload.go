package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
	"github.com/shandysiswandi/chemviz/internal/equipment/stats"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgstorage"
)

// DefaultFileName names uploads that arrive without a filename.
const DefaultFileName = "upload.csv"

var (
	errUploadNotFound    = pkgerror.NewNotFound("upload not found")
	errStoredFileMissing = pkgerror.NewNotFound("stored file not found")
)

// Upload stores the file, computes its statistics and records the result for
// owner. Either all three happen or none: when parsing or the insert fails the
// stored file is removed again.
func (u *Usecase) Upload(ctx context.Context, owner, filename string, r io.Reader) (entity.Upload, error) {
	if owner == "" {
		return entity.Upload{}, errNotAuthenticated
	}
	if r == nil {
		return entity.Upload{}, pkgerror.NewValidation("file is required", nil)
	}
	if u.store == nil || u.blobs == nil || u.id == nil {
		return entity.Upload{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return entity.Upload{}, pkgerror.NewServer(fmt.Errorf("reading upload: %w", err))
	}
	if int64(len(data)) > u.maxBytes {
		return entity.Upload{}, pkgerror.NewTooLarge(fmt.Errorf("file exceeds %d bytes", u.maxBytes))
	}

	name := CleanFileName(filename)
	id := u.id.Generate()
	key := fmt.Sprintf("uploads/%s/%d_%s", url.PathEscape(owner), id, name)

	if err := u.blobs.Write(ctx, key, bytes.NewReader(data)); err != nil {
		return entity.Upload{}, pkgerror.NewServer(fmt.Errorf("storing upload: %w", err))
	}

	result, err := stats.Compute(bytes.NewReader(data))
	if err != nil {
		u.discard(ctx, key)
		slog.WarnContext(ctx, "rejected upload", "owner", owner, "filename", name, "error", err)
		return entity.Upload{}, pkgerror.NewValidation("failed to parse csv", err)
	}

	record := entity.Upload{
		ID:          id,
		Owner:       owner,
		FileName:    name,
		StoragePath: key,
		CreatedAt:   u.clock.Now().UTC(),
		Stats:       result,
	}

	if err := u.store.CreateUpload(ctx, record); err != nil {
		u.discard(ctx, key)
		return entity.Upload{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "upload stored",
		"upload_id", id, "owner", owner, "filename", name, "rows", result.TotalCount)

	return record, nil
}

// History lists owner's uploads, newest first.
func (u *Usecase) History(ctx context.Context, owner string) ([]entity.Upload, error) {
	if owner == "" {
		return nil, errNotAuthenticated
	}

	uploads, err := u.store.ListUploads(ctx, owner)
	if err != nil {
		return nil, normalizeErr(err)
	}

	return uploads, nil
}

// Detail returns one of owner's uploads. Uploads of other users are reported
// as missing.
func (u *Usecase) Detail(ctx context.Context, owner string, id int64) (entity.Upload, error) {
	if owner == "" {
		return entity.Upload{}, errNotAuthenticated
	}

	upload, err := u.store.GetUpload(ctx, id)
	if err != nil {
		return entity.Upload{}, mapStoreErr(err)
	}
	if upload.Owner != owner {
		return entity.Upload{}, errUploadNotFound
	}

	return upload, nil
}

// Open returns one of owner's uploads with a reader over the stored file. The
// caller closes the reader.
func (u *Usecase) Open(ctx context.Context, owner string, id int64) (entity.Upload, io.ReadCloser, error) {
	upload, err := u.Detail(ctx, owner, id)
	if err != nil {
		return entity.Upload{}, nil, err
	}

	body, err := u.blobs.Read(ctx, upload.StoragePath)
	if errors.Is(err, pkgstorage.ErrNotFound) {
		slog.ErrorContext(ctx, "stored upload is missing", "upload_id", id, "key", upload.StoragePath)
		return entity.Upload{}, nil, errStoredFileMissing
	}
	if err != nil {
		return entity.Upload{}, nil, pkgerror.NewServer(fmt.Errorf("reading upload: %w", err))
	}

	return upload, body, nil
}

// CleanFileName keeps only the base name of a client supplied filename.
func CleanFileName(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return DefaultFileName
	}
	return name
}

func (u *Usecase) discard(ctx context.Context, key string) {
	// the request may already be canceled; the blob must still go
	if err := u.blobs.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.ErrorContext(ctx, "failed to remove stored upload", "key", key, "error", err)
	}
}
