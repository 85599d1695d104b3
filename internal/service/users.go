package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"
	"github.com/pribylovaa/go-threads/internal/validation"
	"github.com/pribylovaa/go-threads/pkg/log"
)

// UpdateUserInput — онбординг/редактирование профиля текущего пользователя.
type UpdateUserInput struct {
	Name     string
	Username string
	Bio      string
	Image    string
	Path     string
}

// caller — внешняя идентичность вызывающего или ErrUnauthenticated.
func (s *Service) caller(ctx context.Context, op string) (models.Identity, error) {
	if s.identity == nil {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	id, err := s.identity.Identify(ctx)
	if err != nil {
		log.From(ctx).Warn("unauthenticated", "op", op, "err", err)
		return models.Identity{}, fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
	}

	if id.ExternalID == "" {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	return id, nil
}

// CurrentUser возвращает пользователя приложения для вызывающего,
// создавая его при первом визите (Onboarded=false).
func (s *Service) CurrentUser(ctx context.Context) (*models.User, error) {
	const op = "service/users/CurrentUser"

	id, err := s.caller(ctx, op)
	if err != nil {
		return nil, err
	}

	lg := log.From(ctx).With("op", op, "external_id", id.ExternalID)

	user, err := s.storage.UserByExternalID(ctx, id.ExternalID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		lg.Error("storage error on UserByExternalID", "err", err)
		return nil, internal(op, err)
	}

	user, err = s.storage.CreateUser(ctx, models.User{
		ExternalID: id.ExternalID,
		Username:   id.Username,
		Name:       id.DisplayName(),
		Image:      id.Image,
	})
	if err != nil {
		// Параллельный первый визит: запись уже создана соседним запросом.
		if errors.Is(err, storage.ErrConflict) {
			user, err = s.storage.UserByExternalID(ctx, id.ExternalID)
			if err == nil {
				return user, nil
			}
		}

		lg.Error("storage error on CreateUser", "err", err)
		return nil, internal(op, err)
	}

	lg.Info("user created", "user_id", user.ID)
	return user, nil
}

// UpdateUser — онбординг: сохраняет профиль вызывающего и помечает его Onboarded.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	const op = "service/users/UpdateUser"

	id, err := s.caller(ctx, op)
	if err != nil {
		return nil, err
	}

	lg := log.From(ctx).With("op", op, "external_id", id.ExternalID)

	form, err := validation.Profile(validation.ProfileInput{
		Name:     in.Name,
		Username: in.Username,
		Bio:      in.Bio,
		Image:    in.Image,
	})
	if err != nil {
		lg.Warn("invalid argument", "err", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	user, err := s.storage.UpsertUser(ctx, models.User{
		ExternalID: id.ExternalID,
		Name:       form.Name,
		Username:   form.Username,
		Bio:        form.Bio,
		Image:      form.Image,
		Onboarded:  true,
	})
	if err != nil {
		lg.Error("storage error on UpsertUser", "err", err)
		return nil, internal(op, fmt.Errorf("failed to create/update user: %w", err))
	}

	s.revalidate(ctx, in.Path)

	return user, nil
}

// FetchUser — пользователь по внешнему ID.
func (s *Service) FetchUser(ctx context.Context, externalID string) (*models.User, error) {
	const op = "service/users/FetchUser"

	user, err := s.storage.UserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("storage error on UserByExternalID", "op", op, "err", err)
		return nil, internal(op, fmt.Errorf("failed to fetch user: %w", err))
	}

	return user, nil
}

// FetchUserPosts — вкладка «треды» профиля: посты верхнего уровня пользователя userID
// (внутренний ID), новые сверху, с первым уровнем ответов.
func (s *Service) FetchUserPosts(ctx context.Context, userID string) (*models.UserPosts, error) {
	const op = "service/users/FetchUserPosts"

	lg := log.From(ctx).With("op", op, "user_id", userID)

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidID):
			lg.Warn("not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on UserByID", "err", err)
			return nil, internal(op, fmt.Errorf("failed to fetch user posts: %w", err))
		}
	}

	posts, err := s.storage.PostsByIDs(ctx, user.Posts)
	if err != nil {
		lg.Error("storage error on PostsByIDs", "err", err)
		return nil, internal(op, fmt.Errorf("failed to fetch user posts: %w", err))
	}

	top := posts[:0]
	for _, p := range posts {
		if p.IsTopLevel() {
			top = append(top, p)
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		if top[i].CreatedAt.Equal(top[j].CreatedAt) {
			return top[i].ID > top[j].ID
		}
		return top[i].CreatedAt.After(top[j].CreatedAt)
	})

	views, err := s.assemble(ctx, top, 1)
	if err != nil {
		lg.Error("populate failed", "err", err)
		return nil, internal(op, fmt.Errorf("failed to fetch user posts: %w", err))
	}

	return &models.UserPosts{User: *user, Posts: views}, nil
}
