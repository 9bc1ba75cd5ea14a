// Package impl is implementation of service interface.
package impl

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vidshare/vidshare/internal/entities"
	"github.com/vidshare/vidshare/internal/service"
	"github.com/vidshare/vidshare/internal/storage"
)

type srv struct {
	s storage.Storage
}

// New creates new instance of service.
func New(s storage.Storage) service.Service {
	return srv{
		s: s,
	}
}

func (s srv) Register(ctx context.Context, p *service.RegisterParams) (*entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.s.CreateUser(ctx, &storage.CreateUserParams{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: string(hash),
		Photo:        p.Photo,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, service.ErrEmailTaken
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s srv) Login(ctx context.Context, email, password string) (*entities.User, error) {
	u, err := s.s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrInvalidCredentials
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, service.ErrInvalidCredentials
	}

	return u, nil
}

func (s srv) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	u, err := s.s.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s srv) UpdateUser(ctx context.Context, id int64, p *service.UpdateUserParams) error {
	params := storage.UpdateUserParams{
		Name:  p.Name,
		Email: p.Email,
		Photo: p.Photo,
	}

	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		h := string(hash)
		params.PasswordHash = &h
	}

	if err := s.s.UpdateUser(ctx, id, &params); err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return service.ErrEmailTaken
		case errors.Is(err, storage.ErrNotFound):
			return service.ErrNotFound
		}

		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (s srv) ListUserPosts(ctx context.Context, owner int64) ([]*entities.Post, error) {
	posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{Owner: &owner})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (s srv) CreatePost(ctx context.Context, p *service.CreatePostParams) (*entities.Post, error) {
	post, err := s.s.CreatePost(ctx, &storage.CreatePostParams{
		Owner:       p.Owner,
		Title:       p.Title,
		Description: p.Description,
		Video:       p.Video,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

func (s srv) ListPosts(ctx context.Context, after *int64, limit uint16) ([]*entities.Post, error) {
	posts, err := s.s.ListPosts(ctx, &storage.ListPostsParams{
		After: after,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, nil
}

func (s srv) GetPost(ctx context.Context, id int64) (*entities.Post, error) {
	post, err := s.s.GetPost(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (s srv) UpdatePost(ctx context.Context, id, caller int64, p *service.UpdatePostParams) error {
	if err := s.checkPostOwner(ctx, id, caller); err != nil {
		return err
	}

	if err := s.s.UpdatePost(ctx, id, &storage.UpdatePostParams{
		Title:       p.Title,
		Description: p.Description,
		Video:       p.Video,
	}); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrNotFound
		}

		return fmt.Errorf("failed to update post: %w", err)
	}

	return nil
}

func (s srv) DeletePost(ctx context.Context, id, caller int64) error {
	if err := s.checkPostOwner(ctx, id, caller); err != nil {
		return err
	}

	if err := s.s.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrNotFound
		}

		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func (s srv) HeartPost(ctx context.Context, id int64) error {
	if err := s.s.HeartPost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrNotFound
		}

		return fmt.Errorf("failed to heart post: %w", err)
	}

	return nil
}

func (s srv) ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.s.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return comments, nil
}

func (s srv) AddComment(ctx context.Context, postID, author int64, text string) (*entities.Comment, error) {
	c, err := s.s.CreateComment(ctx, &storage.CreateCommentParams{
		PostID: postID,
		Author: author,
		Text:   text,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrNotFound
		}

		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return c, nil
}

func (s srv) GetComment(ctx context.Context, postID, commentID int64) (*entities.Comment, error) {
	c, err := s.s.GetComment(ctx, postID, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrNotFound
		}

		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return c, nil
}

func (s srv) UpdateComment(ctx context.Context, postID, commentID, caller int64, text string) error {
	if err := s.checkCommentAuthor(ctx, postID, commentID, caller); err != nil {
		return err
	}

	if err := s.s.UpdateComment(ctx, postID, commentID, text); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrNotFound
		}

		return fmt.Errorf("failed to update comment: %w", err)
	}

	return nil
}

func (s srv) DeleteComment(ctx context.Context, postID, commentID, caller int64) error {
	if err := s.checkCommentAuthor(ctx, postID, commentID, caller); err != nil {
		return err
	}

	if err := s.s.DeleteComment(ctx, postID, commentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrNotFound
		}

		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

func (s srv) GetStats(ctx context.Context) (*entities.Stats, error) {
	stats, err := s.s.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// checkPostOwner reports ErrNotFound before ErrForbidden, an absent post is
// not leaked as a permission failure.
func (s srv) checkPostOwner(ctx context.Context, id, caller int64) error {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return err
	}

	if post.Owner != caller {
		return service.ErrForbidden
	}

	return nil
}

func (s srv) checkCommentAuthor(ctx context.Context, postID, commentID, caller int64) error {
	c, err := s.GetComment(ctx, postID, commentID)
	if err != nil {
		return err
	}

	if c.Author != caller {
		return service.ErrForbidden
	}

	return nil
}
