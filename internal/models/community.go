package models

// Community — сообщество (коллекция communities). CRUD сообществ вне этого сервиса,
// здесь поддерживается только список Posts.
type Community struct {
	ID         string
	ExternalID string
	Name       string
	Username   string
	Image      string
	Bio        string
	Posts      []string
}
