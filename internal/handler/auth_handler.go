// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/devconnector/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler は登録・ログイン・現在のユーザー取得のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

type registerRequest struct {
	Name     string `json:"name" validate:"notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required,min=6,max=72" msg:"Please enter a password with 6 or more characters" msg_max:"Please enter a password with 72 or fewer characters"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードダイジェストは含めない。
type userResponse struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar"`
	Date   time.Time `json:"date"`
}

// Register はユーザーを登録し、セッショントークンを返す。
// POST /api/users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Login は資格情報を検証し、セッショントークンを返す。
// POST /api/auth
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Me は認証済みユーザーの情報を返す。
// GET /api/auth
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Date:   u.CreatedAt,
	}
}
