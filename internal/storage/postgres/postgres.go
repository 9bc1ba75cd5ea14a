// Package postgres is implementation of storage interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vidshare/vidshare/internal/entities"
	"github.com/vidshare/vidshare/internal/storage"
)

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

type pg struct {
	ext sqlx.ExtContext
}

type userDTO struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Photo        string    `db:"photo"`
	CreatedAt    time.Time `db:"created_at"`
}

type postDTO struct {
	ID          int64     `db:"id"`
	Owner       int64     `db:"owner"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Video       string    `db:"video"`
	Hearts      uint32    `db:"hearts"`
	CreatedAt   time.Time `db:"created_at"`
}

type commentDTO struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	Author    int64     `db:"author"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// New creates new instance of pg.
func New(db *sql.DB) storage.Storage {
	return pg{
		ext: sqlx.NewDb(db, "postgres"),
	}
}

func (s pg) CreateUser(ctx context.Context, p *storage.CreateUserParams) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `
			INSERT INTO "user"(name, email, password_hash, photo)
			VALUES($1, $2, $3, $4)
			RETURNING id, name, email, password_hash, photo, created_at
		`,
		p.Name, p.Email, p.PasswordHash, p.Photo,
	); err != nil {
		if isPqError(err, uniqueViolation) {
			return nil, storage.ErrConflict
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) GetUser(ctx context.Context, id int64) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `
			SELECT id, name, email, password_hash, photo, created_at FROM "user" WHERE id = $1
		`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var u userDTO

	if err := sqlx.GetContext(ctx, s.ext, &u, `
			SELECT id, name, email, password_hash, photo, created_at FROM "user" WHERE email = $1
		`, email,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toUser(&u), nil
}

func (s pg) UpdateUser(ctx context.Context, id int64, p *storage.UpdateUserParams) error {
	set, args := buildSet(map[string]interface{}{
		"name":          strPtrOrNil(p.Name),
		"email":         strPtrOrNil(p.Email),
		"password_hash": strPtrOrNil(p.PasswordHash),
		"photo":         strPtrOrNil(p.Photo),
	})

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)

	res, err := s.ext.ExecContext(ctx,
		fmt.Sprintf(`UPDATE "user" SET %s WHERE id=$%d`, strings.Join(set, ", "), len(args)),
		args...,
	)
	if err != nil {
		if isPqError(err, uniqueViolation) {
			return storage.ErrConflict
		}

		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) CreatePost(ctx context.Context, p *storage.CreatePostParams) (*entities.Post, error) {
	var post postDTO

	if err := sqlx.GetContext(ctx, s.ext, &post, `
			INSERT INTO post(owner, title, description, video)
			VALUES($1, $2, $3, $4)
			RETURNING id, owner, title, description, video, hearts, created_at
		`,
		p.Owner, p.Title, p.Description, p.Video,
	); err != nil {
		if isPqError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toPost(&post), nil
}

func (s pg) GetPost(ctx context.Context, id int64) (*entities.Post, error) {
	var p postDTO

	if err := sqlx.GetContext(ctx, s.ext, &p, `
			SELECT id, owner, title, description, video, hearts, created_at FROM post WHERE id = $1
		`, id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toPost(&p), nil
}

func (s pg) ListPosts(ctx context.Context, params *storage.ListPostsParams) ([]*entities.Post, error) {
	q := strings.Builder{}
	q.WriteString(`SELECT id, owner, title, description, video, hearts, created_at FROM post`)

	var (
		where []string
		args  []interface{}
	)

	if params.Owner != nil {
		args = append(args, *params.Owner)
		where = append(where, fmt.Sprintf("owner = $%d", len(args)))
	}

	if params.After != nil {
		args = append(args, *params.After)
		where = append(where, fmt.Sprintf("id >= $%d", len(args)))
	}

	if len(where) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(where, " AND "))
	}

	q.WriteString(" ORDER BY id ASC")

	if params.Limit > 0 {
		args = append(args, params.Limit)
		q.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}

	var posts []*postDTO
	if err := sqlx.SelectContext(ctx, s.ext, &posts, q.String(), args...); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Post, len(posts))
	for i, v := range posts {
		out[i] = toPost(v)
	}

	return out, nil
}

func (s pg) UpdatePost(ctx context.Context, id int64, p *storage.UpdatePostParams) error {
	set, args := buildSet(map[string]interface{}{
		"title":       strPtrOrNil(p.Title),
		"description": strPtrOrNil(p.Description),
		"video":       strPtrOrNil(p.Video),
	})

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)

	res, err := s.ext.ExecContext(ctx,
		fmt.Sprintf(`UPDATE post SET %s WHERE id=$%d`, strings.Join(set, ", "), len(args)),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) DeletePost(ctx context.Context, id int64) error {
	res, err := s.ext.ExecContext(ctx, `DELETE FROM post WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// HeartPost increments hearts counter with a single statement, concurrent
// hearts are serialized by the database.
func (s pg) HeartPost(ctx context.Context, id int64) error {
	res, err := s.ext.ExecContext(ctx, `UPDATE post SET hearts = hearts + 1 WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) CreateComment(ctx context.Context, p *storage.CreateCommentParams) (*entities.Comment, error) {
	var c commentDTO

	if err := sqlx.GetContext(ctx, s.ext, &c, `
			INSERT INTO comment(post_id, author, text)
			VALUES($1, $2, $3)
			RETURNING id, post_id, author, text, created_at
		`,
		p.PostID, p.Author, p.Text,
	); err != nil {
		if isPqError(err, foreignKeyViolation) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to exec: %w", err)
	}

	return toComment(&c), nil
}

func (s pg) GetComment(ctx context.Context, postID, commentID int64) (*entities.Comment, error) {
	var c commentDTO

	if err := sqlx.GetContext(ctx, s.ext, &c, `
			SELECT id, post_id, author, text, created_at FROM comment WHERE id = $1 AND post_id = $2
		`, commentID, postID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return toComment(&c), nil
}

func (s pg) ListComments(ctx context.Context, postID int64) ([]*entities.Comment, error) {
	var comments []*commentDTO

	if err := sqlx.SelectContext(ctx, s.ext, &comments, `
			SELECT id, post_id, author, text, created_at FROM comment
			WHERE post_id = $1
			ORDER BY created_at DESC, id DESC
		`, postID,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	out := make([]*entities.Comment, len(comments))
	for i, v := range comments {
		out[i] = toComment(v)
	}

	return out, nil
}

func (s pg) UpdateComment(ctx context.Context, postID, commentID int64, text string) error {
	res, err := s.ext.ExecContext(ctx,
		`UPDATE comment SET text=$3 WHERE id=$1 AND post_id=$2`,
		commentID, postID, text,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) DeleteComment(ctx context.Context, postID, commentID int64) error {
	res, err := s.ext.ExecContext(ctx,
		`DELETE FROM comment WHERE id=$1 AND post_id=$2`,
		commentID, postID,
	)
	if err != nil {
		return fmt.Errorf("failed to exec: %w", err)
	}

	if c, _ := res.RowsAffected(); c == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func (s pg) GetStats(ctx context.Context) (*entities.Stats, error) {
	var stats struct {
		Users    int64 `db:"users"`
		Posts    int64 `db:"posts"`
		Comments int64 `db:"comments"`
		Hearts   int64 `db:"hearts"`
	}

	if err := sqlx.GetContext(ctx, s.ext, &stats, `
			SELECT
				(SELECT COUNT(*) FROM "user") AS users,
				(SELECT COUNT(*) FROM post) AS posts,
				(SELECT COUNT(*) FROM comment) AS comments,
				(SELECT COALESCE(SUM(hearts), 0) FROM post) AS hearts
		`,
	); err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	return &entities.Stats{
		Users:    stats.Users,
		Posts:    stats.Posts,
		Comments: stats.Comments,
		Hearts:   stats.Hearts,
	}, nil
}

func toUser(u *userDTO) *entities.User {
	return &entities.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Photo:        u.Photo,
		CreatedAt:    u.CreatedAt,
	}
}

func toPost(p *postDTO) *entities.Post {
	return &entities.Post{
		ID:          p.ID,
		Owner:       p.Owner,
		Title:       p.Title,
		Description: p.Description,
		Video:       p.Video,
		Hearts:      p.Hearts,
		CreatedAt:   p.CreatedAt,
	}
}

func toComment(c *commentDTO) *entities.Comment {
	return &entities.Comment{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    c.Author,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

// buildSet turns non-nil values into a positional SET clause.
func buildSet(fields map[string]interface{}) ([]string, []interface{}) {
	set := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields))

	// map iteration order is random, keep the clause deterministic
	for _, column := range []string{"name", "email", "password_hash", "photo", "title", "description", "video"} {
		v, ok := fields[column]
		if !ok || v == nil {
			continue
		}

		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	return set, args
}

func strPtrOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}

	return *s
}

func isPqError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}

	return false
}
