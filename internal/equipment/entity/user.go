package entity

import "time"

type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
