package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-threads/internal/errors"
	"github.com/pribylovaa/go-threads/internal/service"
	"github.com/pribylovaa/go-threads/internal/validation"
)

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in CreatePostRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest("malformed body"))
		return
	}

	// Форма проверяется до опознания: первый визит создаёт пользователя.
	if err := validation.PostText(validation.Normalize(in.Post)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Service.CurrentUser(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if in.AccountID != "" && in.AccountID != user.ID {
		apierrors.WriteError(w, r, badRequest("accountId does not match caller"))
		return
	}

	post, err := h.Service.CreatePost(r.Context(), service.CreatePostInput{
		Text:        in.Post,
		AuthorID:    user.ID,
		CommunityID: in.CommunityID,
		Path:        in.Path,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{Post: postFromModel(*post)})
}

// ListFeed — GET /feed?page=&page_size=.
// page по умолчанию 1, page_size — Limits.Default; page_size > Limits.Max отклоняется.
func (h *Handlers) ListFeed(w http.ResponseWriter, r *http.Request) {
	page := int64(1)
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			apierrors.WriteError(w, r, badRequest("page"))
			return
		}

		page = n
	}

	pageSize := h.Limits.Default
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 || (h.Limits.Max > 0 && n > h.Limits.Max) {
			apierrors.WriteError(w, r, badRequest("page_size"))
			return
		}

		pageSize = n
	}

	feed, err := h.Service.FetchPosts(r.Context(), page, pageSize)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, FeedResponse{
		Posts:  postsFromViews(feed.Posts),
		IsNext: feed.IsNext,
	})
}

func (h *Handlers) GetPostByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, badRequest("id"))
		return
	}

	view, err := h.Service.FetchPostByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PostResponse{Post: postFromView(*view)})
}

// DeletePost — DELETE /posts/{id}?path=. Удаляет пост вместе со всей веткой ответов.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, badRequest("id"))
		return
	}

	if _, err := h.Service.CurrentUser(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.Service.DeletePost(r.Context(), id, r.URL.Query().Get("path")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, badRequest("id"))
		return
	}

	var in AddCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest("malformed body"))
		return
	}

	if err := validation.Comment(validation.Normalize(in.Thread)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	user, err := h.Service.CurrentUser(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	comment, err := h.Service.AddComment(r.Context(), service.AddCommentInput{
		PostID:   id,
		Text:     in.Thread,
		AuthorID: user.ID,
		Path:     in.Path,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{Post: postFromModel(*comment)})
}
