package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/devconnector/internal/github"
	"github.com/hitoshi/devconnector/internal/model"
	"github.com/hitoshi/devconnector/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	GetMine(ctx context.Context, userID string) (*model.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	List(ctx context.Context) ([]*model.Profile, error)
	Upsert(ctx context.Context, userID string, fields model.ProfileFields) (*model.Profile, error)
	AddExperience(ctx context.Context, userID string, exp model.Experience) ([]model.Experience, error)
	RemoveExperience(ctx context.Context, userID, expID string) ([]model.Experience, error)
	AddEducation(ctx context.Context, userID string, edu model.Education) ([]model.Education, error)
	RemoveEducation(ctx context.Context, userID, eduID string) ([]model.Education, error)
	GitHubRepos(ctx context.Context, username string) ([]github.Repository, error)
}

// ProfileHandler はプロフィール管理のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// upsertProfileRequest はプロフィール作成・更新リクエストのボディ。
// skillsはカンマ区切りの文字列、SNSリンクはトップレベルの項目として受け取る。
type upsertProfileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Status         string `json:"status" validate:"notblank" msg:"Status is required"`
	Skills         string `json:"skills" validate:"notblank" msg:"Must enter a skill."`
	Bio            string `json:"bio"`
	GitHubUsername string `json:"githubusername"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

type experienceRequest struct {
	Title       string `json:"title" validate:"notblank" msg:"Title is required"`
	Company     string `json:"company" validate:"notblank" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"notblank" msg:"Please specify a start date."`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type educationRequest struct {
	School       string `json:"school" validate:"notblank" msg:"School is required"`
	Degree       string `json:"degree" validate:"notblank" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"notblank" msg:"Field of study is required"`
	From         string `json:"from" validate:"notblank" msg:"Please specify a start date."`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

type profileOwner struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	ID             string             `json:"id"`
	User           profileOwner       `json:"user"`
	Company        string             `json:"company,omitempty"`
	Website        string             `json:"website,omitempty"`
	Location       string             `json:"location,omitempty"`
	Status         string             `json:"status"`
	Skills         []string           `json:"skills"`
	Bio            string             `json:"bio,omitempty"`
	GitHubUsername string             `json:"githubusername,omitempty"`
	Social         model.Social       `json:"social"`
	Experience     []model.Experience `json:"experience"`
	Education      []model.Education  `json:"education"`
	Date           time.Time          `json:"date"`
}

// GetMine は呼び出し元のプロフィールを返す。
// GET /api/profile/me
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	p, err := h.service.GetMine(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// Upsert はプロフィールを作成または更新する。
// POST /api/profile
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req upsertProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.Upsert(r.Context(), userID, model.ProfileFields{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Skills:         profile.SplitSkills(req.Skills),
		Bio:            req.Bio,
		GitHubUsername: req.GitHubUsername,
		Social: model.Social{
			YouTube:   req.YouTube,
			Twitter:   req.Twitter,
			Facebook:  req.Facebook,
			LinkedIn:  req.LinkedIn,
			Instagram: req.Instagram,
		},
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// List は全プロフィールを返す。
// GET /api/profile
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, toProfileResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetByUserID は指定ユーザーのプロフィールを返す。
// GET /api/profile/user/{user_id}
func (h *ProfileHandler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByUserID(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// AddExperience は職歴を追加し、更新後の職歴一覧を返す。
// PUT /api/profile/experience
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req experienceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := h.service.AddExperience(r.Context(), userID, model.Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// RemoveExperience は職歴を削除し、更新後の職歴一覧を返す。
// DELETE /api/profile/experience/{exp_id}
func (h *ProfileHandler) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.service.RemoveExperience(r.Context(), userID, chi.URLParam(r, "exp_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// AddEducation は学歴を追加し、更新後の学歴一覧を返す。
// PUT /api/profile/education
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req educationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	list, err := h.service.AddEducation(r.Context(), userID, model.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// RemoveEducation は学歴を削除し、更新後の学歴一覧を返す。
// DELETE /api/profile/education/{edu_id}
func (h *ProfileHandler) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.service.RemoveEducation(r.Context(), userID, chi.URLParam(r, "edu_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// GitHubRepos は指定GitHubユーザーの最新の公開リポジトリを返す。
// GET /api/profile/github/{username}
func (h *ProfileHandler) GitHubRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := h.service.GitHubRepos(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(repos))
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		ID: p.ID,
		User: profileOwner{
			ID:     p.UserID,
			Name:   p.UserName,
			Avatar: p.UserAvatar,
		},
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         nonNil(p.Skills),
		Bio:            p.Bio,
		GitHubUsername: p.GitHubUsername,
		Social:         p.Social,
		Experience:     nonNil(p.Experience),
		Education:      nonNil(p.Education),
		Date:           p.CreatedAt,
	}
}

// nonNil はnilスライスを空スライスに置き換え、JSONでnullではなく[]を出力させる。
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
