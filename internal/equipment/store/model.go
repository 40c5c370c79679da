package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
)

// uploadModel is the uploads table. Statistics are stored as a JSON text
// column since they are written once and always read whole.
type uploadModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Owner       string    `gorm:"size:150;not null;index:idx_uploads_owner_created,priority:1"`
	FileName    string    `gorm:"size:255;not null"`
	StoragePath string    `gorm:"size:512;not null"`
	CreatedAt   time.Time `gorm:"not null;index:idx_uploads_owner_created,priority:2"`
	StatsJSON   string    `gorm:"type:text;not null"`
}

func (uploadModel) TableName() string { return "uploads" }

type userModel struct {
	Username     string `gorm:"primaryKey;size:150"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func toUploadModel(u entity.Upload) (uploadModel, error) {
	raw, err := json.Marshal(u.Stats)
	if err != nil {
		return uploadModel{}, fmt.Errorf("encoding stats: %w", err)
	}

	return uploadModel{
		ID:          u.ID,
		Owner:       u.Owner,
		FileName:    u.FileName,
		StoragePath: u.StoragePath,
		CreatedAt:   u.CreatedAt,
		StatsJSON:   string(raw),
	}, nil
}

func (m uploadModel) toEntity() (entity.Upload, error) {
	stats := entity.Statistics{}
	if err := json.Unmarshal([]byte(m.StatsJSON), &stats); err != nil {
		return entity.Upload{}, fmt.Errorf("decoding stats of upload %d: %w", m.ID, err)
	}
	stats = normalizeStats(stats)

	return entity.Upload{
		ID:          m.ID,
		Owner:       m.Owner,
		FileName:    m.FileName,
		StoragePath: m.StoragePath,
		CreatedAt:   m.CreatedAt,
		Stats:       stats,
	}, nil
}

// normalizeStats keeps empty distributions as empty slices after a round trip.
func normalizeStats(s entity.Statistics) entity.Statistics {
	if s.ChartLabels == nil {
		s.ChartLabels = []string{}
	}
	if s.ChartData == nil {
		s.ChartData = []int{}
	}
	return s
}
