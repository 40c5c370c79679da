package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/chemviz/internal/equipment/entity"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (LoginResponse) Message() string {
	return "login successful"
}

type NoContent struct{}

func (NoContent) StatusCode() int {
	return http.StatusNoContent
}

type Stats struct {
	TotalCount  int      `json:"total_count"`
	AvgPressure float64  `json:"avg_pressure"`
	AvgTemp     float64  `json:"avg_temp"`
	ChartLabels []string `json:"chart_labels"`
	ChartData   []int    `json:"chart_data"`
}

type UploadResponse struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	Stats     Stats     `json:"stats"`
}

// CreatedUpload is the answer to a successful upload.
type CreatedUpload struct {
	UploadResponse
}

func (CreatedUpload) StatusCode() int {
	return http.StatusCreated
}

func (CreatedUpload) Message() string {
	return "file processed"
}

type HistoryResponse []UploadResponse

func (h HistoryResponse) Meta() map[string]any {
	return map[string]any{"total": len(h)}
}

func toUploadResponse(u entity.Upload) UploadResponse {
	labels := u.Stats.ChartLabels
	if labels == nil {
		labels = []string{}
	}
	data := u.Stats.ChartData
	if data == nil {
		data = []int{}
	}

	return UploadResponse{
		ID:        u.ID,
		FileName:  u.FileName,
		CreatedAt: u.CreatedAt.UTC(),
		Stats: Stats{
			TotalCount:  u.Stats.TotalCount,
			AvgPressure: u.Stats.AvgPressure,
			AvgTemp:     u.Stats.AvgTemp,
			ChartLabels: labels,
			ChartData:   data,
		},
	}
}
