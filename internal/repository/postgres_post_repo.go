package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/devconnector/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
// likes、commentsはjsonb列に新しい順の配列として保存する。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

const selectPostColumns = `
	SELECT id, user_id, text, name, avatar, likes, comments, version, created_at
	FROM posts`

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := scanPost(r.db.QueryRowContext(ctx, selectPostColumns+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	return post, nil
}

// List は全投稿を作成日時の新しい順に取得する。
func (r *PostgresPostRepo) List(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx, selectPostColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// Create は投稿を作成する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	likes, comments, err := encodePostDocuments(post)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, text, name, avatar, likes, comments, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		post.ID, post.UserID, post.Text, post.Name, post.Avatar,
		likes, comments, post.Version, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Update はlikes、commentsを含む投稿全体を保存する。
// 保存先のversionがpost.Versionと一致しない場合はErrVersionConflictを返す。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.Post) error {
	likes, comments, err := encodePostDocuments(post)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE posts
		 SET text = $1, likes = $2, comments = $3, version = version + 1
		 WHERE id = $4 AND version = $5`,
		post.Text, likes, comments, post.ID, post.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}
	post.Version++
	return nil
}

// Delete は指定IDの投稿を削除する。
func (r *PostgresPostRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post not found: %s", id)
	}
	return nil
}

// DeleteByUserID はユーザーの全投稿を削除する。
func (r *PostgresPostRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete posts by user: %w", err)
	}
	return nil
}

func scanPost(s rowScanner) (*model.Post, error) {
	p := &model.Post{}
	var likes, comments []byte

	err := s.Scan(
		&p.ID, &p.UserID, &p.Text, &p.Name, &p.Avatar,
		&likes, &comments, &p.Version, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Likes, err = unmarshalList[model.Like](likes); err != nil {
		return nil, err
	}
	if p.Comments, err = unmarshalList[model.Comment](comments); err != nil {
		return nil, err
	}
	return p, nil
}

func encodePostDocuments(p *model.Post) (likes, comments []byte, err error) {
	if likes, err = marshalList(p.Likes); err != nil {
		return nil, nil, err
	}
	if comments, err = marshalList(p.Comments); err != nil {
		return nil, nil, err
	}
	return likes, comments, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
