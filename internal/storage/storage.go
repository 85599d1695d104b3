// Package storage описывает контракт документного хранилища threads-сервиса:
// коллекции users, posts и communities.
//
// Хранилище не поддерживает обратные ссылки (Post.Children, User.Posts,
// Community.Posts) само — этим занимается сервисный слой.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/go-threads/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID — идентификатор не является ObjectID.
	ErrInvalidID = errors.New("invalid id")
	// ErrConflict — конфликт уникальности (external_id).
	ErrConflict = errors.New("conflict")
)

// PostStorage — операции над постами.
type PostStorage interface {
	// CreatePost вставляет пост. ID и CreatedAt проставляются хранилищем.
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)

	// PostByID возвращает пост по идентификатору.
	// Если запись не найдена — ErrNotFound; невалидный id — ErrInvalidID.
	PostByID(ctx context.Context, id string) (*models.Post, error)

	// PostsByIDs возвращает найденные посты; отсутствующие пропускаются.
	// Порядок результата не определён.
	PostsByIDs(ctx context.Context, ids []string) ([]models.Post, error)

	// ListTopLevel — посты без родителя, created_at DESC, со смещением skip и лимитом limit.
	// limit == 0 означает пустую страницу (а не «без лимита»).
	ListTopLevel(ctx context.Context, skip, limit int64) ([]models.Post, error)

	// CountTopLevel — общее количество постов без родителя.
	CountTopLevel(ctx context.Context) (int64, error)

	// ChildrenOf — прямые ответы на любой из parentIDs одним запросом.
	// Внутри одного родителя порядок — порядок вставки.
	ChildrenOf(ctx context.Context, parentIDs []string) ([]models.Post, error)

	// AppendChild добавляет childID в конец Children родителя.
	// Если родитель не найден — ErrNotFound.
	AppendChild(ctx context.Context, parentID, childID string) error

	// DeletePostTree удаляет посты postIDs одной операцией и вычищает их из
	// User.Posts у authorIDs, из Community.Posts у communityIDs и из Children у parentID
	// (если задан). Возвращает количество удалённых постов.
	DeletePostTree(ctx context.Context, tree PostTree) (int64, error)
}

// PostTree — всё, что затрагивает удаление поддерева.
type PostTree struct {
	PostIDs      []string
	AuthorIDs    []string
	CommunityIDs []string
	// ParentID — родитель корня поддерева; пустой для постов верхнего уровня.
	ParentID string
}

// UserStorage — операции над пользователями.
type UserStorage interface {
	// CreateUser создаёт пользователя. Дубликат external_id — ErrConflict.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// UpsertUser обновляет профиль по ExternalID или создаёт его.
	// Posts не затрагиваются.
	UpsertUser(ctx context.Context, user models.User) (*models.User, error)

	// UserByID / UserByExternalID — ErrNotFound при отсутствии.
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByExternalID(ctx context.Context, externalID string) (*models.User, error)

	// UsersByIDs возвращает найденных пользователей; отсутствующие пропускаются.
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// AppendUserPost добавляет postID в конец User.Posts.
	AppendUserPost(ctx context.Context, userID, postID string) error
}

// CommunityStorage — операции над сообществами.
type CommunityStorage interface {
	// CommunityByExternalID — ErrNotFound при отсутствии.
	CommunityByExternalID(ctx context.Context, externalID string) (*models.Community, error)

	// CommunitiesByIDs возвращает найденные сообщества; отсутствующие пропускаются.
	CommunitiesByIDs(ctx context.Context, ids []string) ([]models.Community, error)

	// AppendCommunityPost добавляет postID в конец Community.Posts.
	AppendCommunityPost(ctx context.Context, communityID, postID string) error
}

// Storage — полный контракт хранилища.
type Storage interface {
	PostStorage
	UserStorage
	CommunityStorage

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
