package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreatePost вставляет пост. Если ID пустой — драйвер сгенерирует новый ObjectID.
// Children на вставке всегда пустой список (не null), чтобы $push работал без проверок.
func (m *Mongo) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	const op = "storage/mongo/CreatePost"

	author, err := oid(post.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("%s: author: %w", op, storage.ErrInvalidID)
	}

	doc := postDoc{
		Text:      post.Text,
		Author:    author,
		ParentID:  strings.TrimSpace(post.ParentID),
		Children:  oids(post.Children),
		CreatedAt: toMS(time.Now()),
	}

	if post.CommunityID != "" {
		c, err := oid(post.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("%s: community: %w", op, storage.ErrInvalidID)
		}
		doc.Community = &c
	}

	res, err := m.posts.InsertOne(ctx, doc)
	if err != nil {
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

// PostByID возвращает пост по идентификатору.
func (m *Mongo) PostByID(ctx context.Context, id string) (*models.Post, error) {
	const op = "storage/mongo/PostByID"

	o, err := oid(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidID)
	}

	var doc postDoc
	if err := m.posts.FindOne(ctx, bson.D{{Key: "_id", Value: o}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.model()
	return &out, nil
}

// PostsByIDs — один запрос $in.
func (m *Mongo) PostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	const op = "storage/mongo/PostsByIDs"

	list := oids(ids)
	if len(list) == 0 {
		return []models.Post{}, nil
	}

	out, err := m.findPosts(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: list}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListTopLevel — страница ленты. Сортировка: created_at DESC, _id DESC.
// limit <= 0 даёт пустую страницу: у MongoDB limit 0 означает «без ограничения».
func (m *Mongo) ListTopLevel(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	const op = "storage/mongo/ListTopLevel"

	if limit <= 0 {
		return []models.Post{}, nil
	}

	if skip < 0 {
		skip = 0
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	out, err := m.findPosts(ctx, bson.D{{Key: "parent_id", Value: ""}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// CountTopLevel — количество постов без родителя.
func (m *Mongo) CountTopLevel(ctx context.Context) (int64, error) {
	const op = "storage/mongo/CountTopLevel"

	n, err := m.posts.CountDocuments(ctx, bson.D{{Key: "parent_id", Value: ""}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// ChildrenOf — прямые ответы на любой из parentIDs одним запросом.
// Сортировка created_at ASC, _id ASC сохраняет порядок ответов внутри родителя.
func (m *Mongo) ChildrenOf(ctx context.Context, parentIDs []string) ([]models.Post, error) {
	const op = "storage/mongo/ChildrenOf"

	parents := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		if id = strings.TrimSpace(id); id != "" {
			parents = append(parents, id)
		}
	}

	if len(parents) == 0 {
		return []models.Post{}, nil
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	out, err := m.findPosts(ctx, bson.D{{Key: "parent_id", Value: bson.D{{Key: "$in", Value: parents}}}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// AppendChild — $push childID в children родителя.
func (m *Mongo) AppendChild(ctx context.Context, parentID, childID string) error {
	const op = "storage/mongo/AppendChild"

	parent, err := oid(parentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidID)
	}

	child, err := oid(childID)
	if err != nil {
		return fmt.Errorf("%s: child: %w", op, storage.ErrInvalidID)
	}

	res, err := m.posts.UpdateByID(ctx, parent, bson.D{
		{Key: "$push", Value: bson.D{{Key: "children", Value: child}}},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeletePostTree удаляет поддерево и вычищает ссылки на него.
// При cfg.DB.Transactions все записи выполняются в одной транзакции (нужен replica set),
// иначе — последовательно, без отката при частичном сбое.
func (m *Mongo) DeletePostTree(ctx context.Context, tree storage.PostTree) (int64, error) {
	const op = "storage/mongo/DeletePostTree"

	if !m.cfg.DB.Transactions {
		n, err := m.deleteTree(ctx, tree)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}

		return n, nil
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("%s: start session: %w", op, err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongodriver.SessionContext) (interface{}, error) {
		return m.deleteTree(sc, tree)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: tx: %w", op, err)
	}

	n, _ := res.(int64)
	return n, nil
}

func (m *Mongo) deleteTree(ctx context.Context, tree storage.PostTree) (int64, error) {
	ids := oids(tree.PostIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	pull := bson.D{{Key: "$in", Value: ids}}

	res, err := m.posts.DeleteMany(ctx, bson.D{{Key: "_id", Value: pull}})
	if err != nil {
		return 0, fmt.Errorf("delete posts: %w", err)
	}

	if authors := oids(tree.AuthorIDs); len(authors) > 0 {
		_, err := m.users.UpdateMany(ctx,
			bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: authors}}}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "posts", Value: pull}}}},
		)
		if err != nil {
			return 0, fmt.Errorf("pull user posts: %w", err)
		}
	}

	if communities := oids(tree.CommunityIDs); len(communities) > 0 {
		_, err := m.communities.UpdateMany(ctx,
			bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: communities}}}},
			bson.D{{Key: "$pull", Value: bson.D{{Key: "posts", Value: pull}}}},
		)
		if err != nil {
			return 0, fmt.Errorf("pull community posts: %w", err)
		}
	}

	if parent, err := oid(tree.ParentID); err == nil {
		_, err := m.posts.UpdateByID(ctx, parent,
			bson.D{{Key: "$pull", Value: bson.D{{Key: "children", Value: pull}}}},
		)
		if err != nil {
			return 0, fmt.Errorf("pull parent children: %w", err)
		}
	}

	return res.DeletedCount, nil
}

func (m *Mongo) findPosts(ctx context.Context, filter bson.D, opts ...*options.FindOptions) ([]models.Post, error) {
	cur, err := m.posts.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Post{}
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		out = append(out, doc.model())
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", err)
	}

	return out, nil
}
