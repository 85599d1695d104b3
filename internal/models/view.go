package models

// UserRef — «подтянутый» автор для отображения.
type UserRef struct {
	ID         string
	ExternalID string
	Name       string
	Image      string
}

// CommunityRef — «подтянутое» сообщество для отображения.
type CommunityRef struct {
	ID         string
	ExternalID string
	Name       string
	Image      string
}

// PostView — пост с разрешёнными ссылками.
// Author/Community равны nil, если документ-источник отсутствует.
// Children заполнены только до запрошенной глубины; глубже остаётся Post.Children (ID).
type PostView struct {
	Post
	Author    *UserRef
	Community *CommunityRef
	Replies   []PostView
}

// FeedPage — страница ленты.
type FeedPage struct {
	Posts  []PostView
	IsNext bool
}

// UserPosts — пользователь и его посты (вкладка профиля).
type UserPosts struct {
	User  User
	Posts []PostView
}

// NewUserRef сокращает User до полей отображения.
func NewUserRef(u User) *UserRef {
	return &UserRef{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Name:       u.Name,
		Image:      u.Image,
	}
}

// NewCommunityRef сокращает Community до полей отображения.
func NewCommunityRef(c Community) *CommunityRef {
	return &CommunityRef{
		ID:         c.ID,
		ExternalID: c.ExternalID,
		Name:       c.Name,
		Image:      c.Image,
	}
}
