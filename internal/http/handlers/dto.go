package handlers

import (
	"github.com/pribylovaa/go-threads/internal/models"
)

// Запросы повторяют поля форм фронтенда.

// CreatePostRequest — форма нового треда.
type CreatePostRequest struct {
	Post        string `json:"post"`
	AccountID   string `json:"accountId,omitempty"` // если задан — должен совпадать с вызывающим
	CommunityID string `json:"communityId,omitempty"`
	Path        string `json:"path,omitempty"`
}

// AddCommentRequest — форма ответа в ветке.
type AddCommentRequest struct {
	Thread string `json:"thread"`
	Path   string `json:"path,omitempty"`
}

// UpdateUserRequest — форма онбординга профиля.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Image    string `json:"image,omitempty"`
	Path     string `json:"path,omitempty"`
}

type UserRef struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
}

type CommunityRef struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
}

// Post — пост с подтянутыми ссылками.
// Children — ID прямых ответов; Replies — собранные ответы до глубины выдачи.
type Post struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	ParentID  string        `json:"parent_id,omitempty"` // "" — верхний уровень
	Author    *UserRef      `json:"author"`
	Community *CommunityRef `json:"community"`
	Children  []string      `json:"children"`
	Replies   []Post        `json:"replies"`
	CreatedAt int64         `json:"created_at"` // Unix UTC
}

type FeedResponse struct {
	Posts  []Post `json:"posts"`
	IsNext bool   `json:"is_next"`
}

type PostResponse struct {
	Post Post `json:"post"`
}

type User struct {
	ID         string   `json:"id"`
	ExternalID string   `json:"external_id"`
	Name       string   `json:"name"`
	Username   string   `json:"username"`
	Bio        string   `json:"bio"`
	Image      string   `json:"image,omitempty"`
	Posts      []string `json:"posts"`
	Onboarded  bool     `json:"onboarded"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UserPostsResponse struct {
	User  User   `json:"user"`
	Posts []Post `json:"posts"`
}

func postFromModel(p models.Post) Post {
	return Post{
		ID:        p.ID,
		Text:      p.Text,
		ParentID:  p.ParentID,
		Children:  nonNil(p.Children),
		Replies:   []Post{},
		CreatedAt: p.CreatedAt.UTC().Unix(),
	}
}

func postFromView(v models.PostView) Post {
	out := postFromModel(v.Post)

	if v.Author != nil {
		out.Author = &UserRef{
			ID:         v.Author.ID,
			ExternalID: v.Author.ExternalID,
			Name:       v.Author.Name,
			Image:      v.Author.Image,
		}
	}

	if v.Community != nil {
		out.Community = &CommunityRef{
			ID:         v.Community.ID,
			ExternalID: v.Community.ExternalID,
			Name:       v.Community.Name,
			Image:      v.Community.Image,
		}
	}

	out.Replies = postsFromViews(v.Replies)
	return out
}

func postsFromViews(views []models.PostView) []Post {
	out := make([]Post, 0, len(views))
	for _, v := range views {
		out = append(out, postFromView(v))
	}

	return out
}

func userFromModel(u models.User) User {
	return User{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Username:   u.Username,
		Bio:        u.Bio,
		Image:      u.Image,
		Posts:      nonNil(u.Posts),
		Onboarded:  u.Onboarded,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}

	return ids
}
