package mongo

import (
	"strings"
	"time"

	"github.com/pribylovaa/go-threads/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Документы коллекций. Доменные модели не знают о bson,
// поэтому ID конвертируются в hex-строки на границе пакета.

type postDoc struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Text      string               `bson:"text"`
	Author    primitive.ObjectID   `bson:"author"`
	ParentID  string               `bson:"parent_id"`
	Community *primitive.ObjectID  `bson:"community,omitempty"`
	Children  []primitive.ObjectID `bson:"children"`
	CreatedAt time.Time            `bson:"created_at"`
}

type userDoc struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	ExternalID string               `bson:"external_id"`
	Name       string               `bson:"name"`
	Username   string               `bson:"username"`
	Bio        string               `bson:"bio"`
	Image      string               `bson:"image"`
	Posts      []primitive.ObjectID `bson:"posts"`
	Onboarded  bool                 `bson:"onboarded"`
}

type communityDoc struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty"`
	ExternalID string               `bson:"external_id"`
	Name       string               `bson:"name"`
	Username   string               `bson:"username"`
	Image      string               `bson:"image"`
	Bio        string               `bson:"bio"`
	Posts      []primitive.ObjectID `bson:"posts"`
}

func (d postDoc) model() models.Post {
	p := models.Post{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		AuthorID:  d.Author.Hex(),
		ParentID:  d.ParentID,
		Children:  hexes(d.Children),
		CreatedAt: d.CreatedAt.UTC(),
	}

	if d.Community != nil {
		p.CommunityID = d.Community.Hex()
	}

	return p
}

func (d userDoc) model() models.User {
	return models.User{
		ID:         d.ID.Hex(),
		ExternalID: d.ExternalID,
		Name:       d.Name,
		Username:   d.Username,
		Bio:        d.Bio,
		Image:      d.Image,
		Posts:      hexes(d.Posts),
		Onboarded:  d.Onboarded,
	}
}

func (d communityDoc) model() models.Community {
	return models.Community{
		ID:         d.ID.Hex(),
		ExternalID: d.ExternalID,
		Name:       d.Name,
		Username:   d.Username,
		Image:      d.Image,
		Bio:        d.Bio,
		Posts:      hexes(d.Posts),
	}
}

func oid(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(id))
}

// oids конвертирует список; невалидные id пропускаются — им всё равно ничего не соответствует.
func oids(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if o, err := oid(id); err == nil {
			out = append(out, o)
		}
	}

	return out
}

func hexes(list []primitive.ObjectID) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.Hex())
	}

	return out
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
