package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/caminemosjuntos/counseling/internal/telemetry/tracing"
	"github.com/caminemosjuntos/counseling/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// manual caching of prepared statements not needed:
// https://github.com/jackc/pgx/wiki/Automatic-Prepared-Statement-Caching

const postColumns = `p.id, p.author_id, u.name, p.title, p.subtitle, p.date, p.body, p.img_url`

var _ blogRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddPost(ctx context.Context, post *Post) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AddPost")
	defer func() { tracing.EndSpan(span, err) }()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;`,
		post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL,
	).Scan(&post.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrPostTitleTaken
		}
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

// UpdatePost updates the editable fields of the post; author and date stay as they were
func (r *Repo) UpdatePost(ctx context.Context, post *Post) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.UpdatePost")
	span.SetAttributes(attribute.Int("id", post.ID))
	defer func() { tracing.EndSpan(span, err) }()

	tag, err := r.db.Exec(
		ctx,
		`UPDATE blog_posts SET title = $1, subtitle = $2, body = $3, img_url = $4 WHERE id = $5;`,
		post.Title, post.Subtitle, post.Body, post.ImgURL, post.ID,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrPostTitleTaken
		}
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

// DeletePost removes the post together with its comments
func (r *Repo) DeletePost(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.DeletePost")
	span.SetAttributes(attribute.Int("id", id))
	defer func() { tracing.EndSpan(span, err) }()

	tag, err := r.db.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	log.Tracef("post %d deleted", id)
	return nil
}

// All returns every post, newest first
func (r *Repo) All(ctx context.Context) ([]*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.All")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+postColumns+` FROM blog_posts p JOIN users u ON u.id = p.author_id ORDER BY p.id DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
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

func (r *Repo) GetPost(ctx context.Context, id int) (*Post, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.GetPost")
	span.SetAttributes(attribute.Int("id", id))
	defer span.End()

	post, err := scanPost(r.db.QueryRow(
		ctx,
		`SELECT `+postColumns+` FROM blog_posts p JOIN users u ON u.id = p.author_id WHERE p.id = $1;`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	return post, err
}

func (r *Repo) AddComment(ctx context.Context, comment *Comment) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.AddComment")
	span.SetAttributes(attribute.Int("post.id", comment.PostID))
	defer func() { tracing.EndSpan(span, err) }()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO comments (post_id, author_id, text) VALUES ($1, $2, $3) RETURNING id, created_at;`,
		comment.PostID, comment.AuthorID, comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		// the post was deleted meanwhile
		if pkg.IsForeignKeyViolationError(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// PostComments returns the comments of the post, oldest first
func (r *Repo) PostComments(ctx context.Context, postID int) ([]*Comment, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.PostComments")
	span.SetAttributes(attribute.Int("post.id", postID))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT c.id, c.post_id, c.author_id, u.name, u.email, c.text, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1 ORDER BY c.id;`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c := &Comment{}
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.AuthorEmail, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

func scanPost(row pgx.Row) (*Post, error) {
	p := &Post{}
	if err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL); err != nil {
		return nil, err
	}
	return p, nil
}
