package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateUser создаёт пользователя; дубликат external_id — storage.ErrConflict.
func (m *Mongo) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/mongo/CreateUser"

	doc := userDoc{
		ExternalID: strings.TrimSpace(user.ExternalID),
		Name:       user.Name,
		Username:   user.Username,
		Bio:        user.Bio,
		Image:      user.Image,
		Posts:      oids(user.Posts),
		Onboarded:  user.Onboarded,
	}

	res, err := m.users.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = id
	out := doc.model()

	return &out, nil
}

// UpsertUser обновляет профиль по external_id (или создаёт запись с пустым posts).
func (m *Mongo) UpsertUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/mongo/UpsertUser"

	filter := bson.D{{Key: "external_id", Value: strings.TrimSpace(user.ExternalID)}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: user.Name},
			{Key: "username", Value: user.Username},
			{Key: "bio", Value: user.Bio},
			{Key: "image", Value: user.Image},
			{Key: "onboarded", Value: user.Onboarded},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "posts", Value: bson.A{}},
		}},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc userDoc
	if err := m.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.model()
	return &out, nil
}

// UserByID — поиск по внутреннему ObjectID.
func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	o, err := oid(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidID)
	}

	return m.findUser(ctx, op, bson.D{{Key: "_id", Value: o}})
}

// UserByExternalID — поиск по идентификатору провайдера.
func (m *Mongo) UserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	const op = "storage/mongo/UserByExternalID"

	return m.findUser(ctx, op, bson.D{{Key: "external_id", Value: strings.TrimSpace(externalID)}})
}

func (m *Mongo) findUser(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := m.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.model()
	return &out, nil
}

// UsersByIDs — один запрос $in.
func (m *Mongo) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	const op = "storage/mongo/UsersByIDs"

	list := oids(ids)
	if len(list) == 0 {
		return []models.User{}, nil
	}

	cur, err := m.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: list}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}

	return out, nil
}

// AppendUserPost — $push postID в posts пользователя.
func (m *Mongo) AppendUserPost(ctx context.Context, userID, postID string) error {
	const op = "storage/mongo/AppendUserPost"

	return m.push(ctx, op, m.users, userID, "posts", postID)
}

// push добавляет value в конец массива field документа id.
func (m *Mongo) push(ctx context.Context, op string, coll *mongodriver.Collection, id, field, value string) error {
	doc, err := oid(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidID)
	}

	val, err := oid(value)
	if err != nil {
		return fmt.Errorf("%s: value: %w", op, storage.ErrInvalidID)
	}

	res, err := coll.UpdateByID(ctx, doc, bson.D{
		{Key: "$push", Value: bson.D{{Key: field, Value: val}}},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
