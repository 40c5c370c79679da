package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
	"github.com/shandysiswandi/chemviz/internal/pkg/pkgerror"
)

// GormStore persists uploads and users in a SQL database through gorm.
type GormStore struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the sqlite database at dsn and
// migrates the schema.
func OpenSQLite(dsn string) (*GormStore, error) {
	if err := ensureDir(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	return NewGormStore(db)
}

// ensureDir creates the parent directory of a plain file dsn. In-memory
// databases and file: URIs are left to the driver.
func ensureDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o750); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return nil
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&uploadModel{}, &userModel{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) CreateUpload(ctx context.Context, upload entity.Upload) error {
	m, err := toUploadModel(upload)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return pkgerror.NewConflict("upload already exists")
		}
		return fmt.Errorf("inserting upload: %w", err)
	}

	return nil
}

// ListUploads returns owner's uploads, newest first.
func (s *GormStore) ListUploads(ctx context.Context, owner string) ([]entity.Upload, error) {
	var rows []uploadModel
	err := s.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing uploads: %w", err)
	}

	uploads := make([]entity.Upload, 0, len(rows))
	for _, row := range rows {
		u, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}

	return uploads, nil
}

func (s *GormStore) GetUpload(ctx context.Context, id int64) (entity.Upload, error) {
	var row uploadModel
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Upload{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.Upload{}, fmt.Errorf("getting upload %d: %w", id, err)
	}

	return row.toEntity()
}

// UpsertUser inserts the user or replaces its password hash.
func (s *GormStore) UpsertUser(ctx context.Context, user entity.User) error {
	m := userModel{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("upserting user %q: %w", user.Username, err)
	}

	return nil
}

func (s *GormStore) GetUser(ctx context.Context, username string) (entity.User, error) {
	var row userModel
	err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.User{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.User{}, fmt.Errorf("getting user %q: %w", username, err)
	}

	return entity.User{
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
