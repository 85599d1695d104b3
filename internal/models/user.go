package models

// User — пользователь приложения (коллекция users).
//   - ID — внутренний ObjectID;
//   - ExternalID — идентификатор у провайдера идентичности (уникален);
//   - Posts — ссылки на посты и комментарии автора в порядке создания.
type User struct {
	ID         string
	ExternalID string
	Name       string
	Username   string
	Bio        string
	Image      string
	Posts      []string
	Onboarded  bool
}

// Identity — то, что провайдер идентичности сообщает о вызывающем.
// Сервис не валидирует эти поля, а только переносит их в User.
type Identity struct {
	ExternalID string
	Username   string
	Name       string
	FirstName  string
	Image      string
}

// DisplayName возвращает имя для нового профиля: Name, иначе FirstName.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}

	return i.FirstName
}
