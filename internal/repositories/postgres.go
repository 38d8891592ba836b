package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/0xMishra/social-media-backend/internal/db"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/models"
)

const uniqueViolation = "23505"

const userColumns = `id::text, name, email, password_hash, created_at, bio, profile_pic_url`

const postColumns = `id::text, created_by::text, description, image_url, created_at, likes, comments`

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record. The unique index on email turns a
// duplicate signup into ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) (created models.User, err error) {
	op := logging.StartOp(ctx, "users.create")
	defer func() { op.End(err) }()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO users (id, name, email, password_hash, created_at, bio, profile_pic_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, user.ID, user.Name, user.Email, user.Password, user.CreatedAt, user.Bio, user.ProfilePicURL)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return models.User{}, ErrNotAcknowledged
	}

	return user, nil
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "users.find_by_email", `WHERE email = $1`, email)
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, ErrNotFound
	}
	return r.findOne(ctx, "users.find_by_id", `WHERE id = $1`, id)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, name, where string, arg any) (user models.User, err error) {
	op := logging.StartOp(ctx, name)
	defer func() { op.End(ignoreNotFound(err)) }()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.Bio, &user.ProfilePicURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// PostgresPostRepository stores posts as rows whose likes are a TEXT[] and
// whose comments are a JSONB array, so membership changes and appends are
// single-statement atomic updates.
type PostgresPostRepository struct {
	pool db.Pool
}

// NewPostgresPostRepository constructs a post repository backed by PostgreSQL.
func NewPostgresPostRepository(pool db.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

// Insert stores a new post and returns it with its assigned identifier.
func (r *PostgresPostRepository) Insert(ctx context.Context, post models.Post) (inserted models.Post, err error) {
	op := logging.StartOp(ctx, "posts.insert")
	defer func() { op.End(err) }()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        INSERT INTO posts (id, created_by, description, image_url, created_at, likes, comments)
        VALUES ($1, $2, $3, $4, $5, '{}', '[]'::jsonb)
        RETURNING `+postColumns,
		post.ID, post.CreatedBy, post.Description, post.ImageURL, post.CreatedAt)

	inserted, err = scanPost(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Post{}, ErrNotAcknowledged
		}
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return inserted, nil
}

// FindByID fetches a post by identifier.
func (r *PostgresPostRepository) FindByID(ctx context.Context, id string) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, ErrNotFound
	}
	return r.queryOne(ctx, "posts.find_by_id", `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

// List returns posts newest first, optionally restricted to one owner.
func (r *PostgresPostRepository) List(ctx context.Context, filter PostFilter) (posts []models.Post, err error) {
	op := logging.StartOp(ctx, "posts.list")
	defer func() { op.End(err) }()

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT ` + postColumns + ` FROM posts`)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query.WriteString(fmt.Sprintf(` WHERE created_by = $%d`, len(args)))
	}
	query.WriteString(` ORDER BY created_at DESC, id`)
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query.WriteString(fmt.Sprintf(` OFFSET $%d`, len(args)))
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts = make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// UpdateOwned replaces the editable fields of a post owned by ownerID.
func (r *PostgresPostRepository) UpdateOwned(ctx context.Context, id, ownerID string, patch PostPatch) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, ErrNotFound
	}
	return r.queryOne(ctx, "posts.update_owned", `
        UPDATE posts
        SET image_url = $3, description = COALESCE($4::text, description)
        WHERE id = $1 AND created_by = $2
        RETURNING `+postColumns, id, ownerID, patch.ImageURL, patch.Description)
}

// DeleteOwned removes a post owned by ownerID and returns the removed document.
func (r *PostgresPostRepository) DeleteOwned(ctx context.Context, id, ownerID string) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, ErrNotFound
	}
	return r.queryOne(ctx, "posts.delete_owned", `
        DELETE FROM posts
        WHERE id = $1 AND created_by = $2
        RETURNING `+postColumns, id, ownerID)
}

// AddLike adds userID to the likes set unless it is already a member.
func (r *PostgresPostRepository) AddLike(ctx context.Context, id, userID string) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, ErrNotFound
	}
	return r.queryOne(ctx, "posts.add_like", `
        UPDATE posts
        SET likes = CASE WHEN $2::text = ANY(likes) THEN likes ELSE array_append(likes, $2::text) END
        WHERE id = $1
        RETURNING `+postColumns, id, userID)
}

// RemoveLike removes userID from the likes set.
func (r *PostgresPostRepository) RemoveLike(ctx context.Context, id, userID string) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, ErrNotFound
	}
	return r.queryOne(ctx, "posts.remove_like", `
        UPDATE posts
        SET likes = array_remove(likes, $2::text)
        WHERE id = $1
        RETURNING `+postColumns, id, userID)
}

// AppendComment pushes comment onto the end of the comment sequence.
func (r *PostgresPostRepository) AppendComment(ctx context.Context, id string, comment models.Comment) (models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Post{}, ErrNotFound
	}
	return r.queryOne(ctx, "posts.append_comment", `
        UPDATE posts
        SET comments = comments || jsonb_build_array(jsonb_build_object('commentedBy', $2::text, 'text', $3::text))
        WHERE id = $1
        RETURNING `+postColumns, id, comment.CommentedBy, comment.Text)
}

func (r *PostgresPostRepository) queryOne(ctx context.Context, name, query string, args ...any) (post models.Post, err error) {
	op := logging.StartOp(ctx, name)
	defer func() { op.End(ignoreNotFound(err)) }()

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	post, err = scanPost(conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, fmt.Errorf("%s: %w", name, err)
	}
	return post, nil
}

func scanPost(row pgx.Row) (models.Post, error) {
	var post models.Post
	if err := row.Scan(&post.ID, &post.CreatedBy, &post.Description, &post.ImageURL, &post.CreatedAt, &post.Likes, &post.Comments); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}
	post.CreatedAt = post.CreatedAt.UTC()
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	return post, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ PostRepository = (*PostgresPostRepository)(nil)
