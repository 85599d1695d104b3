// Package memory — хранилище в памяти с той же семантикой, что и MongoDB-реализация.
// Используется в тестах сервисного слоя и для локального запуска без БД.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store реализует storage.Storage в памяти.
type Store struct {
	mu          sync.RWMutex
	posts       map[string]*models.Post
	order       []string // порядок вставки постов
	users       map[string]*models.User
	communities map[string]*models.Community

	// writes — счётчик мутирующих операций, нужен тестам.
	writes int
	now    func() time.Time
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{
		posts:       make(map[string]*models.Post),
		users:       make(map[string]*models.User),
		communities: make(map[string]*models.Community),
		now:         time.Now,
	}
}

// Writes возвращает количество выполненных мутаций.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.writes
}

// SetClock подменяет источник времени (для детерминированной сортировки в тестах).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now = now
}

func (s *Store) Close(context.Context) error { return nil }

func newID() string {
	return primitive.NewObjectID().Hex()
}

func checkID(op, id string) error {
	if _, err := primitive.ObjectIDFromHex(strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidID)
	}

	return nil
}

func clonePost(p *models.Post) models.Post {
	out := *p
	out.Children = append([]string(nil), p.Children...)

	return out
}

func cloneUser(u *models.User) models.User {
	out := *u
	out.Posts = append([]string(nil), u.Posts...)

	return out
}

func cloneCommunity(c *models.Community) models.Community {
	out := *c
	out.Posts = append([]string(nil), c.Posts...)

	return out
}

func without(list []string, drop map[string]struct{}) []string {
	out := list[:0]
	for _, id := range list {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}

	return out
}

// === Posts ===

func (s *Store) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = newID()
	post.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	post.Children = append([]string(nil), post.Children...)

	s.posts[post.ID] = &post
	s.order = append(s.order, post.ID)
	s.writes++

	out := clonePost(&post)
	return &out, nil
}

func (s *Store) PostByID(_ context.Context, id string) (*models.Post, error) {
	const op = "storage/memory/PostByID"

	if err := checkID(op, id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := clonePost(p)
	return &out, nil
}

func (s *Store) PostsByIDs(_ context.Context, ids []string) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.posts[id]; ok {
			out = append(out, clonePost(p))
		}
	}

	return out, nil
}

// topLevel — посты без родителя, created_at DESC, при равенстве — более поздняя вставка первой.
func (s *Store) topLevel() []*models.Post {
	out := make([]*models.Post, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		if p, ok := s.posts[s.order[i]]; ok && p.IsTopLevel() {
			out = append(out, p)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out
}

func (s *Store) ListTopLevel(_ context.Context, skip, limit int64) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return []models.Post{}, nil
	}

	all := s.topLevel()
	if skip < 0 {
		skip = 0
	}

	if skip >= int64(len(all)) {
		return []models.Post{}, nil
	}

	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}

	out := make([]models.Post, 0, end-skip)
	for _, p := range all[skip:end] {
		out = append(out, clonePost(p))
	}

	return out, nil
}

func (s *Store) CountTopLevel(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.posts {
		if p.IsTopLevel() {
			n++
		}
	}

	return n, nil
}

func (s *Store) ChildrenOf(_ context.Context, parentIDs []string) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parents := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}

	var out []models.Post
	for _, id := range s.order {
		p, ok := s.posts[id]
		if !ok || p.ParentID == "" {
			continue
		}

		if _, hit := parents[p.ParentID]; hit {
			out = append(out, clonePost(p))
		}
	}

	return out, nil
}

func (s *Store) AppendChild(_ context.Context, parentID, childID string) error {
	const op = "storage/memory/AppendChild"

	if err := checkID(op, parentID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[parentID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	p.Children = append(p.Children, childID)
	s.writes++

	return nil
}

func (s *Store) DeletePostTree(_ context.Context, tree storage.PostTree) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(tree.PostIDs))
	for _, id := range tree.PostIDs {
		drop[id] = struct{}{}
	}

	var deleted int64
	for id := range drop {
		if _, ok := s.posts[id]; ok {
			delete(s.posts, id)
			deleted++
		}
	}
	s.order = without(s.order, drop)
	s.writes++

	for _, id := range tree.AuthorIDs {
		if u, ok := s.users[id]; ok {
			u.Posts = without(u.Posts, drop)
		}
	}
	s.writes++

	for _, id := range tree.CommunityIDs {
		if c, ok := s.communities[id]; ok {
			c.Posts = without(c.Posts, drop)
		}
	}
	s.writes++

	if tree.ParentID != "" {
		if p, ok := s.posts[tree.ParentID]; ok {
			p.Children = without(p.Children, drop)
		}
		s.writes++
	}

	return deleted, nil
}

// === Users ===

func (s *Store) userByExternal(externalID string) *models.User {
	for _, u := range s.users {
		if u.ExternalID == externalID {
			return u
		}
	}

	return nil
}

func (s *Store) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	const op = "storage/memory/CreateUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByExternal(user.ExternalID) != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrConflict)
	}

	user.ID = newID()
	user.Posts = append([]string(nil), user.Posts...)
	s.users[user.ID] = &user
	s.writes++

	out := cloneUser(&user)
	return &out, nil
}

func (s *Store) UpsertUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes++

	u := s.userByExternal(user.ExternalID)
	if u == nil {
		user.ID = newID()
		user.Posts = nil
		s.users[user.ID] = &user

		out := cloneUser(&user)
		return &out, nil
	}

	u.Name = user.Name
	u.Username = user.Username
	u.Bio = user.Bio
	u.Image = user.Image
	u.Onboarded = user.Onboarded

	out := cloneUser(u)
	return &out, nil
}

func (s *Store) UserByID(_ context.Context, id string) (*models.User, error) {
	const op = "storage/memory/UserByID"

	if err := checkID(op, id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := cloneUser(u)
	return &out, nil
}

func (s *Store) UserByExternalID(_ context.Context, externalID string) (*models.User, error) {
	const op = "storage/memory/UserByExternalID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.userByExternal(externalID)
	if u == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := cloneUser(u)
	return &out, nil
}

func (s *Store) UsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, cloneUser(u))
		}
	}

	return out, nil
}

func (s *Store) AppendUserPost(_ context.Context, userID, postID string) error {
	const op = "storage/memory/AppendUserPost"

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	u.Posts = append(u.Posts, postID)
	s.writes++

	return nil
}

// === Communities ===

// PutCommunity регистрирует сообщество (CRUD сообществ вне сервиса, метод нужен для наполнения).
func (s *Store) PutCommunity(c models.Community) models.Community {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	c.Posts = append([]string(nil), c.Posts...)
	s.communities[c.ID] = &c

	return cloneCommunity(&c)
}

func (s *Store) CommunityByExternalID(_ context.Context, externalID string) (*models.Community, error) {
	const op = "storage/memory/CommunityByExternalID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.communities {
		if c.ExternalID == externalID {
			out := cloneCommunity(c)
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (s *Store) CommunitiesByIDs(_ context.Context, ids []string) ([]models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Community, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.communities[id]; ok {
			out = append(out, cloneCommunity(c))
		}
	}

	return out, nil
}

func (s *Store) AppendCommunityPost(_ context.Context, communityID, postID string) error {
	const op = "storage/memory/AppendCommunityPost"

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communities[communityID]
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	c.Posts = append(c.Posts, postID)
	s.writes++

	return nil
}

var _ storage.Storage = (*Store)(nil)
