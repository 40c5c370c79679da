package inbound

import (
	"context"
	"io"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgrouter"
)

type uc interface {
	Login(ctx context.Context, username, password string) (pkgauth.Session, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (pkgauth.Identity, error)
	Upload(ctx context.Context, owner, filename string, r io.Reader) (entity.Upload, error)
	History(ctx context.Context, owner string) ([]entity.Upload, error)
	Detail(ctx context.Context, owner string, id int64) (entity.Upload, error)
	Open(ctx context.Context, owner string, id int64) (entity.Upload, io.ReadCloser, error)
	MaxBytes() int64
}

func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}
	auth := pkgrouter.MiddlewareAuth(uc)

	r.POST("/api/login", end.Login)
	r.POST("/api/logout", end.Logout, auth)

	r.POST("/api/upload", end.Upload, auth)
	r.GET("/api/history", end.History, auth)
	r.GET("/api/uploads/:id", end.Detail, auth)
	r.GET("/api/uploads/:id/file", end.Download, auth)
}
