// Package storage contains a storage interface.
package storage

import (
	"context"
	"fmt"

	"github.com/vidshare/vidshare/internal/entities"
)

//go:generate mockgen -destination=./mock/storage.go -package=mock -source=storage.go

// ErrNotFound ...
var ErrNotFound = fmt.Errorf("not found")

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = fmt.Errorf("conflict")

// Storage provides methods for interacting with database.
type Storage interface {
	CreateUser(ctx context.Context, p *CreateUserParams) (*entities.User, error)
	GetUser(ctx context.Context, id int64) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateUser(ctx context.Context, id int64, p *UpdateUserParams) error

	CreatePost(ctx context.Context, p *CreatePostParams) (*entities.Post, error)
	GetPost(ctx context.Context, id int64) (*entities.Post, error)
	ListPosts(ctx context.Context, p *ListPostsParams) ([]*entities.Post, error)
	UpdatePost(ctx context.Context, id int64, p *UpdatePostParams) error
	DeletePost(ctx context.Context, id int64) error
	HeartPost(ctx context.Context, id int64) error

	CreateComment(ctx context.Context, p *CreateCommentParams) (*entities.Comment, error)
	GetComment(ctx context.Context, postID, commentID int64) (*entities.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID int64, text string) error
	DeleteComment(ctx context.Context, postID, commentID int64) error

	GetStats(ctx context.Context) (*entities.Stats, error)
}

// CreateUserParams ...
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Photo        string
}

// UpdateUserParams describes a partial update, nil fields are left untouched.
type UpdateUserParams struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Photo        *string
}

// CreatePostParams ...
type CreatePostParams struct {
	Owner       int64
	Title       string
	Description string
	Video       string
}

// UpdatePostParams describes a partial update, nil fields are left untouched.
type UpdatePostParams struct {
	Title       *string
	Description *string
	Video       *string
}

// ListPostsParams ...
type ListPostsParams struct {
	Owner *int64
	After *int64
	Limit uint16
}

// CreateCommentParams ...
type CreateCommentParams struct {
	PostID int64
	Author int64
	Text   string
}
