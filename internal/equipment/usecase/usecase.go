package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

// DefaultMaxBytes caps an uploaded file when Dependency.MaxBytes is not set.
const DefaultMaxBytes int64 = 10 << 20

type Store interface {
	CreateUpload(ctx context.Context, upload entity.Upload) error
	ListUploads(ctx context.Context, owner string) ([]entity.Upload, error)
	GetUpload(ctx context.Context, id int64) (entity.Upload, error)
	UpsertUser(ctx context.Context, user entity.User) error
	GetUser(ctx context.Context, username string) (entity.User, error)
}

// Blobs keeps the raw uploaded files. Read reports a missing key with
// pkgstorage.ErrNotFound.
type Blobs interface {
	Write(ctx context.Context, key string, data io.Reader) error
	Read(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type Sessions interface {
	Create(username string) (pkgauth.Session, error)
	Get(token string) (pkgauth.Session, bool)
	Delete(token string)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store    Store
	Blobs    Blobs
	Sessions Sessions
	Clock    Clock
	ID       pkguid.NumberID
	MaxBytes int64
}

type Usecase struct {
	store    Store
	blobs    Blobs
	sessions Sessions
	clock    Clock
	id       pkguid.NumberID
	maxBytes int64
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	maxBytes := dep.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &Usecase{
		store:    dep.Store,
		blobs:    dep.Blobs,
		sessions: dep.Sessions,
		clock:    clock,
		id:       dep.ID,
		maxBytes: maxBytes,
	}
}

// MaxBytes is the largest accepted upload file.
func (u *Usecase) MaxBytes() int64 {
	return u.maxBytes
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return errUploadNotFound
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
