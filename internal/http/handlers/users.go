package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-threads/internal/errors"
	"github.com/pribylovaa/go-threads/internal/service"
)

// Me — GET /me: текущий пользователь; при первом визите профиль создаётся.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.CurrentUser(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: userFromModel(*user)})
}

// UpdateMe — PUT /me: онбординг/редактирование профиля.
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in UpdateUserRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, badRequest("malformed body"))
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), service.UpdateUserInput{
		Name:     in.Name,
		Username: in.Username,
		Bio:      in.Bio,
		Image:    in.Image,
		Path:     in.Path,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: userFromModel(*user)})
}

func (h *Handlers) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, badRequest("id"))
		return
	}

	res, err := h.Service.FetchUserPosts(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, UserPostsResponse{
		User:  userFromModel(res.User),
		Posts: postsFromViews(res.Posts),
	})
}
