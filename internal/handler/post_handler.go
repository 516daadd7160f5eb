package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/devconnector/internal/model"
)

// PostServiceInterface は投稿ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	Create(ctx context.Context, userID, text string) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	Get(ctx context.Context, postID string) (*model.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	Like(ctx context.Context, userID, postID string) ([]model.Like, error)
	Unlike(ctx context.Context, userID, postID string) ([]model.Like, error)
	AddComment(ctx context.Context, userID, postID, text string) ([]model.Comment, error)
	RemoveComment(ctx context.Context, userID, postID, commentID string) ([]model.Comment, error)
}

// PostHandler は投稿・いいね・コメントのHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

type textRequest struct {
	Text string `json:"text" validate:"notblank" msg:"Text is required"`
}

// postResponse は投稿のAPIレスポンス。
type postResponse struct {
	ID       string          `json:"id"`
	User     string          `json:"user"`
	Text     string          `json:"text"`
	Name     string          `json:"name"`
	Avatar   string          `json:"avatar"`
	Likes    []model.Like    `json:"likes"`
	Comments []model.Comment `json:"comments"`
	Date     time.Time       `json:"date"`
}

// Create は投稿を作成する。
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req textRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// List は全投稿を新しい順に返す。
// GET /api/posts
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		resp = append(resp, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は投稿を1件返す。
// GET /api/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(p))
}

// Delete は投稿を削除する。投稿者本人のみ実行できる。
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Msg: "Post removed."})
}

// Like は投稿にいいねし、更新後のいいね一覧を返す。
// PUT /api/posts/like/{id}
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Like(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(likes))
}

// Unlike はいいねを取り消し、更新後のいいね一覧を返す。
// PUT /api/posts/unlike/{id}
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	likes, err := h.service.Unlike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(likes))
}

// AddComment はコメントを追加し、更新後のコメント一覧を返す。
// POST /api/posts/comment/{id}
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req textRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	comments, err := h.service.AddComment(r.Context(), userID, chi.URLParam(r, "id"), req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(comments))
}

// RemoveComment はコメントを削除し、更新後のコメント一覧を返す。
// DELETE /api/posts/comment/{id}/{comment_id}
func (h *PostHandler) RemoveComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	comments, err := h.service.RemoveComment(r.Context(), userID,
		chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(comments))
}

func toPostResponse(p *model.Post) postResponse {
	return postResponse{
		ID:       p.ID,
		User:     p.UserID,
		Text:     p.Text,
		Name:     p.Name,
		Avatar:   p.Avatar,
		Likes:    nonNil(p.Likes),
		Comments: nonNil(p.Comments),
		Date:     p.CreatedAt,
	}
}
