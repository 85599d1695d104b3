package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// CommunityByExternalID — поиск сообщества по идентификатору провайдера.
func (m *Mongo) CommunityByExternalID(ctx context.Context, externalID string) (*models.Community, error) {
	const op = "storage/mongo/CommunityByExternalID"

	var doc communityDoc
	err := m.communities.FindOne(ctx, bson.D{{Key: "external_id", Value: strings.TrimSpace(externalID)}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := doc.model()
	return &out, nil
}

func (m *Mongo) CommunitiesByIDs(ctx context.Context, ids []string) ([]models.Community, error) {
	const op = "storage/mongo/CommunitiesByIDs"

	list := oids(ids)
	if len(list) == 0 {
		return []models.Community{}, nil
	}

	cur, err := m.communities.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: list}}}})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	var docs []communityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	out := make([]models.Community, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}

	return out, nil
}

func (m *Mongo) AppendCommunityPost(ctx context.Context, communityID, postID string) error {
	const op = "storage/mongo/AppendCommunityPost"

	return m.push(ctx, op, m.communities, communityID, "posts", postID)
}

var _ storage.Storage = (*Mongo)(nil)
