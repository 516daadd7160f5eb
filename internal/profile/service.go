// Package profile はプロフィールと、その職歴・学歴のドメインロジックを提供する。
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/devconnector/internal/auth"
	"github.com/hitoshi/devconnector/internal/collection"
	"github.com/hitoshi/devconnector/internal/github"
	"github.com/hitoshi/devconnector/internal/metrics"
	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/repository"
)

// LinkValidator はプロフィールに登録される外部リンクの検証インターフェース。
type LinkValidator interface {
	ValidateLink(raw string) error
}

// Service はプロフィールのサービス層。
type Service struct {
	profileRepo repository.ProfileRepository
	links       LinkValidator
	repos       github.RepoLister
	metrics     metrics.MetricsCollector
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// reposがnilの場合、GitHubリポジトリ取得は常にGITHUB_USER_NOT_FOUNDを返す。
func NewService(
	profileRepo repository.ProfileRepository,
	links LinkValidator,
	repos github.RepoLister,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Service{
		profileRepo: profileRepo,
		links:       links,
		repos:       repos,
		metrics:     collector,
		now:         time.Now,
	}
}

// GetMine は呼び出し元のプロフィールを返す。
func (s *Service) GetMine(ctx context.Context, userID string) (*model.Profile, error) {
	return s.load(ctx, userID)
}

// GetByUserID は指定ユーザーのプロフィールを返す。
// IDの形式が不正な場合も見つからないものとして扱う。
func (s *Service) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.NewProfileNotFoundError()
	}
	return s.load(ctx, userID)
}

// List は全プロフィールを返す。
func (s *Service) List(ctx context.Context) ([]*model.Profile, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Upsert はプロフィールを作成または更新する。
// 空文字列のスカラー項目は既存の値を維持する。Skillsは常に置き換え、
// Socialは指定されたリンクのみで丸ごと置き換える。
func (s *Service) Upsert(ctx context.Context, userID string, fields model.ProfileFields) (*model.Profile, error) {
	skills := cleanSkills(fields.Skills)
	if strings.TrimSpace(fields.Status) == "" {
		return nil, model.NewValidationError("Status is required")
	}
	if len(skills) == 0 {
		return nil, model.NewValidationError("Skills is required")
	}
	if err := s.validateLinks(fields); err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	now := s.now().UTC()
	if existing == nil {
		p := &model.Profile{
			ID:         uuid.New().String(),
			UserID:     userID,
			Experience: []model.Experience{},
			Education:  []model.Education{},
			Version:    1,
			CreatedAt:  now,
		}
		applyFields(p, fields, skills)
		p.UpdatedAt = now

		if err := s.profileRepo.Create(ctx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, model.NewConflictError()
			}
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		slog.Info("profile created",
			slog.String("profile_id", p.ID),
			slog.String("user_id", userID),
		)
		return s.load(ctx, userID)
	}

	applyFields(existing, fields, skills)
	existing.UpdatedAt = now
	if err := s.save(ctx, existing); err != nil {
		return nil, err
	}
	slog.Info("profile updated",
		slog.String("profile_id", existing.ID),
		slog.String("user_id", userID),
	)
	return existing, nil
}

// AddExperience は職歴を先頭に追加し、更新後の職歴一覧を返す。
func (s *Service) AddExperience(ctx context.Context, userID string, exp model.Experience) ([]model.Experience, error) {
	p, err := s.mutate(ctx, "experience", "add", userID, func(p *model.Profile) error {
		exp.ID = collection.NewID()
		p.Experience = collection.Prepend(p.Experience, exp)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Experience, nil
}

// RemoveExperience は指定IDの職歴を削除し、更新後の職歴一覧を返す。
func (s *Service) RemoveExperience(ctx context.Context, userID, expID string) ([]model.Experience, error) {
	p, err := s.mutate(ctx, "experience", "remove", userID, func(p *model.Profile) error {
		list, _, err := collection.RemoveByID(p.Experience, expID)
		if err != nil {
			return model.NewExperienceNotFoundError(expID)
		}
		p.Experience = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Experience, nil
}

// AddEducation は学歴を先頭に追加し、更新後の学歴一覧を返す。
func (s *Service) AddEducation(ctx context.Context, userID string, edu model.Education) ([]model.Education, error) {
	p, err := s.mutate(ctx, "education", "add", userID, func(p *model.Profile) error {
		edu.ID = collection.NewID()
		p.Education = collection.Prepend(p.Education, edu)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Education, nil
}

// RemoveEducation は指定IDの学歴を削除し、更新後の学歴一覧を返す。
func (s *Service) RemoveEducation(ctx context.Context, userID, eduID string) ([]model.Education, error) {
	p, err := s.mutate(ctx, "education", "remove", userID, func(p *model.Profile) error {
		list, _, err := collection.RemoveByID(p.Education, eduID)
		if err != nil {
			return model.NewEducationNotFoundError(eduID)
		}
		p.Education = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.Education, nil
}

// GitHubRepos は指定GitHubユーザーの公開リポジトリを返す。
func (s *Service) GitHubRepos(ctx context.Context, username string) ([]github.Repository, error) {
	if s.repos == nil {
		s.metrics.RecordGitHubLookup(metrics.ResultNotFound)
		return nil, model.NewGitHubUserNotFoundError()
	}
	repos, err := s.repos.ListRepos(ctx, username)
	if err != nil {
		if errors.Is(err, github.ErrUserNotFound) {
			s.metrics.RecordGitHubLookup(metrics.ResultNotFound)
			return nil, model.NewGitHubUserNotFoundError()
		}
		s.metrics.RecordGitHubLookup(metrics.ResultError)
		return nil, fmt.Errorf("failed to list github repos: %w", err)
	}
	s.metrics.RecordGitHubLookup(metrics.ResultOK)
	return repos, nil
}

// mutate は呼び出し元のプロフィールを読み込んで所有者を確認し、
// applyで変更してからバージョン付きで保存する。
func (s *Service) mutate(
	ctx context.Context,
	coll, op, userID string,
	apply func(p *model.Profile) error,
) (p *model.Profile, err error) {
	defer func() {
		s.metrics.RecordMutation(coll, op, metrics.ResultFromError(err))
	}()

	p, err = s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := auth.Authorize(userID, p.UserID); err != nil {
		return nil, model.NewForbiddenError("User not authorized.")
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, p *model.Profile) error {
	if err := s.profileRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			slog.Warn("profile update conflict",
				slog.String("profile_id", p.ID),
				slog.String("user_id", p.UserID),
			)
			return model.NewConflictError()
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if p == nil {
		return nil, model.NewProfileNotFoundError()
	}
	return p, nil
}

func (s *Service) validateLinks(fields model.ProfileFields) error {
	links := []struct {
		name  string
		value string
	}{
		{"website", fields.Website},
		{"youtube", fields.Social.YouTube},
		{"twitter", fields.Social.Twitter},
		{"facebook", fields.Social.Facebook},
		{"linkedin", fields.Social.LinkedIn},
		{"instagram", fields.Social.Instagram},
	}
	for _, l := range links {
		if err := s.links.ValidateLink(l.value); err != nil {
			return model.NewValidationError(fmt.Sprintf("Invalid %s link", l.name))
		}
	}
	return nil
}

func applyFields(p *model.Profile, fields model.ProfileFields, skills []string) {
	setIfPresent(&p.Company, fields.Company)
	setIfPresent(&p.Website, fields.Website)
	setIfPresent(&p.Location, fields.Location)
	setIfPresent(&p.Status, fields.Status)
	setIfPresent(&p.Bio, fields.Bio)
	setIfPresent(&p.GitHubUsername, fields.GitHubUsername)
	p.Skills = skills
	p.Social = fields.Social
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// SplitSkills はカンマ区切りのスキル文字列を分割する。
func SplitSkills(raw string) []string {
	return cleanSkills(strings.Split(raw, ","))
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
