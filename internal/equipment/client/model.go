package client

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnauthorized is returned when the server rejects or misses the credential.
var ErrUnauthorized = errors.New("chemviz: unauthorized")

// Credential authenticates requests. The zero value is anonymous.
type Credential struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the credential can still be sent at now. A zero
// ExpiresAt, as for a token given on the command line, never expires.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && (c.ExpiresAt.IsZero() || now.Before(c.ExpiresAt))
}

type Stats struct {
	TotalCount  int      `json:"total_count"`
	AvgPressure float64  `json:"avg_pressure"`
	AvgTemp     float64  `json:"avg_temp"`
	ChartLabels []string `json:"chart_labels"`
	ChartData   []int    `json:"chart_data"`
}

type Upload struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	Stats     Stats     `json:"stats"`
}

// APIError is a non-2xx answer other than 401.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("chemviz: %d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("chemviz: %d %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Message string         `json:"message"`
	Data    T              `json:"data"`
	Meta    map[string]any `json:"meta"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   struct {
		Detail string `json:"detail"`
	} `json:"error"`
}
