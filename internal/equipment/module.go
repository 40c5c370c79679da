package equipment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chemviz/internal/equipment/inbound"
	"github.com/shandysiswandi/chemviz/internal/equipment/store"
	"github.com/shandysiswandi/chemviz/internal/equipment/usecase"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgauth"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgstorage"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkguid"
)

const defaultSweepInterval = 10 * time.Minute

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.NumberID
}

type recordStore interface {
	usecase.Store
	Close() error
}

func New(dep Dependency) (func(context.Context) error, error) {
	records, err := newRecordStore(dep.Config)
	if err != nil {
		return nil, err
	}

	blobs, err := newBlobStore(dep.Config)
	if err != nil {
		_ = records.Close()
		return nil, err
	}

	if dep.ID == nil {
		ids, err := pkguid.NewSnowflake(dep.Config.GetInt("id.node"))
		if err != nil {
			_ = records.Close()
			return nil, fmt.Errorf("snowflake: %w", err)
		}
		dep.ID = ids
	}

	sessions := pkgauth.NewSessionStore(dep.Config.GetDuration("auth.token_ttl"))

	uc := usecase.New(usecase.Dependency{
		Store:    records,
		Blobs:    blobs,
		Sessions: sessions,
		ID:       dep.ID,
		MaxBytes: dep.Config.GetInt("upload.max_bytes"),
	})

	if err := uc.SeedUsers(dep.Context, dep.Config.GetMap("auth.users")); err != nil {
		_ = records.Close()
		return nil, fmt.Errorf("seeding users: %w", err)
	}

	interval := dep.Config.GetDuration("auth.sweep_interval")
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	dep.Goroutine.Go(dep.Context, "session-sweeper", func(ctx context.Context) error {
		return sessions.SweepEvery(ctx, interval)
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return func(context.Context) error {
		return records.Close()
	}, nil
}

func newRecordStore(cfg pkgconfig.Config) (recordStore, error) {
	switch driver := cfg.GetString("database.driver"); driver {
	case "memory":
		slog.Warn("using in-memory record store, uploads are lost on restart")
		return store.NewInMemoryStore(), nil
	case "", "sqlite":
		dsn := cfg.GetString("database.dsn")
		if dsn == "" {
			dsn = "chemviz.db"
		}
		return store.OpenSQLite(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

func newBlobStore(cfg pkgconfig.Config) (pkgstorage.Storage, error) {
	switch driver := cfg.GetString("storage.driver"); driver {
	case "s3":
		client := pkgstorage.NewS3Client(pkgstorage.S3Config{
			Region:    cfg.GetString("storage.s3.region"),
			Endpoint:  cfg.GetString("storage.s3.endpoint"),
			AccessKey: cfg.GetString("storage.s3.access_key"),
			SecretKey: cfg.GetString("storage.s3.secret_key"),
			PathStyle: cfg.GetBool("storage.s3.path_style"),
		})
		return pkgstorage.NewS3Storage(client, cfg.GetString("storage.s3.bucket"), cfg.GetString("storage.s3.prefix"))
	case "", "local":
		root := cfg.GetString("storage.local.root")
		if root == "" {
			root = "./data"
		}
		return pkgstorage.NewLocal(root)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
