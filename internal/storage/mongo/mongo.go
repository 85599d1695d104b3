package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/pribylovaa/go-threads/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	postsCollection       = "posts"
	usersCollection       = "users"
	communitiesCollection = "communities"
	defaultDBName         = "threads"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	cfg         *config.Config
	client      *mongodriver.Client
	db          *mongodriver.Database
	posts       *mongodriver.Collection
	users       *mongodriver.Collection
	communities *mongodriver.Collection
}

// New подключается к MongoDB, проверяет его, подготавливает коллекции и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		cfg:         cfg,
		client:      cli,
		db:          db,
		posts:       db.Collection(postsCollection),
		users:       db.Collection(usersCollection),
		communities: db.Collection(communitiesCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping проверяет доступность primary (для /healthz).
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

var (
	sharedMu sync.Mutex
	shared   *Mongo
)

// Shared возвращает общее для процесса подключение, создавая его при первом вызове.
// Повторные вызовы переиспользуют его независимо от cfg.
func Shared(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}

	m, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	shared = m
	return shared, nil
}

// CloseShared закрывает общее подключение; следующий Shared подключится заново.
func CloseShared(ctx context.Context) error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		return nil
	}

	err := shared.Close(ctx)
	shared = nil

	return err
}

// ensureIndexes создает индексы, необходимые для threads-сервиса.
// - Лента: parent_id + created_at(desc) + _id(desc)
// - Посты автора: author + created_at(desc)
// - Уникальный external_id у пользователей и сообществ
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	postIdx := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "parent_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("parent_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("author_created_desc"),
		},
	}

	if _, err := m.posts.Indexes().CreateMany(ctx, postIdx); err != nil {
		return fmt.Errorf("mongo ensure indexes: posts: %w", err)
	}

	unique := mongodriver.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetName("external_id_unique").SetUnique(true),
	}

	if _, err := m.users.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("mongo ensure indexes: users: %w", err)
	}

	if _, err := m.communities.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("mongo ensure indexes: communities: %w", err)
	}

	return nil
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
