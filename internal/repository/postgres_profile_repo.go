package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/devconnector/internal/model"
	"github.com/lib/pq"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
// experience、educationはjsonb列に新しい順の配列として保存する。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

const selectProfileColumns = `
	SELECT p.id, p.user_id, p.company, p.website, p.location, p.status, p.skills,
	       p.bio, p.github_username, p.social, p.experience, p.education,
	       p.version, p.created_at, p.updated_at, u.name, u.avatar
	FROM profiles p
	JOIN users u ON u.id = p.user_id`

// FindByUserID はユーザーIDでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	row := r.db.QueryRowContext(ctx, selectProfileColumns+` WHERE p.user_id = $1`, userID)
	profile, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}
	return profile, nil
}

// List は全プロフィールを所有者情報付きで取得する。
func (r *PostgresProfileRepo) List(ctx context.Context) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx, selectProfileColumns+` ORDER BY p.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*model.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// Create はプロフィールを作成する。同じユーザーのプロフィールが存在する場合はErrDuplicateを返す。
func (r *PostgresProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	social, experience, education, err := encodeProfileDocuments(profile)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, company, website, location, status, skills,
		                       bio, github_username, social, experience, education,
		                       version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		profile.ID, profile.UserID, profile.Company, profile.Website, profile.Location,
		profile.Status, pq.Array(profile.Skills), profile.Bio, profile.GitHubUsername,
		social, experience, education,
		profile.Version, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update はプロフィール全体を保存する。
// 保存先のversionがprofile.Versionと一致しない場合はErrVersionConflictを返す。
func (r *PostgresProfileRepo) Update(ctx context.Context, profile *model.Profile) error {
	social, experience, education, err := encodeProfileDocuments(profile)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles
		 SET company = $1, website = $2, location = $3, status = $4, skills = $5,
		     bio = $6, github_username = $7, social = $8, experience = $9, education = $10,
		     version = version + 1, updated_at = $11
		 WHERE id = $12 AND version = $13`,
		profile.Company, profile.Website, profile.Location, profile.Status,
		pq.Array(profile.Skills), profile.Bio, profile.GitHubUsername,
		social, experience, education,
		profile.UpdatedAt, profile.ID, profile.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrVersionConflict
	}
	profile.Version++
	return nil
}

// DeleteByUserID はユーザーのプロフィールを削除する。存在しない場合も成功とする。
func (r *PostgresProfileRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func scanProfile(s rowScanner) (*model.Profile, error) {
	p := &model.Profile{}
	var skills pq.StringArray
	var social, experience, education []byte

	err := s.Scan(
		&p.ID, &p.UserID, &p.Company, &p.Website, &p.Location, &p.Status, &skills,
		&p.Bio, &p.GitHubUsername, &social, &experience, &education,
		&p.Version, &p.CreatedAt, &p.UpdatedAt, &p.UserName, &p.UserAvatar,
	)
	if err != nil {
		return nil, err
	}

	p.Skills = []string(skills)
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if len(social) > 0 {
		if err := json.Unmarshal(social, &p.Social); err != nil {
			return nil, fmt.Errorf("failed to unmarshal social: %w", err)
		}
	}
	if p.Experience, err = unmarshalList[model.Experience](experience); err != nil {
		return nil, err
	}
	if p.Education, err = unmarshalList[model.Education](education); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeProfileDocuments(p *model.Profile) (social, experience, education []byte, err error) {
	if social, err = json.Marshal(p.Social); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal social: %w", err)
	}
	if experience, err = marshalList(p.Experience); err != nil {
		return nil, nil, nil, err
	}
	if education, err = marshalList(p.Education); err != nil {
		return nil, nil, nil, err
	}
	return social, experience, education, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
