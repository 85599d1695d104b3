package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pribylovaa/go-threads/internal/config"
	apierrors "github.com/pribylovaa/go-threads/internal/errors"
	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/service"
)

// Service — то, что хендлерам нужно от сервисного слоя.
type Service interface {
	CreatePost(ctx context.Context, in service.CreatePostInput) (*models.Post, error)
	FetchPosts(ctx context.Context, page, pageSize int64) (*models.FeedPage, error)
	FetchPostByID(ctx context.Context, id string) (*models.PostView, error)
	DeletePost(ctx context.Context, id, path string) error
	AddComment(ctx context.Context, in service.AddCommentInput) (*models.Post, error)

	CurrentUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, in service.UpdateUserInput) (*models.User, error)
	FetchUserPosts(ctx context.Context, userID string) (*models.UserPosts, error)
}

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	Service Service
	Limits  config.LimitsConfig
}

func New(svc Service, limits config.LimitsConfig) *Handlers {
	return &Handlers{Service: svc, Limits: limits}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// badRequest — локальная ошибка разбора запроса.
func badRequest(reason string) error {
	return fmt.Errorf("%w: %s", apierrors.ErrBadRequest, reason)
}
