// Package entities contains main entities of service.
package entities

import (
	"time"
)

// User ...
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Photo        string
	CreatedAt    time.Time
}

// Post ...
type Post struct {
	ID          int64
	Owner       int64
	Title       string
	Description string
	Video       string
	Hearts      uint32
	CreatedAt   time.Time
}

// Comment ...
type Comment struct {
	ID        int64
	PostID    int64
	Author    int64
	Text      string
	CreatedAt time.Time
}

// Stats represents whole platform counters.
type Stats struct {
	Users    int64
	Posts    int64
	Comments int64
	Hearts   int64
}
