package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pribylovaa/go-threads/internal/loaders"
	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"
	"github.com/pribylovaa/go-threads/internal/validation"
	"github.com/pribylovaa/go-threads/pkg/log"
)

// Входные структуры сервисного слоя.

// CreatePostInput — создание поста верхнего уровня.
//   - AuthorID — внутренний ID пользователя;
//   - CommunityID — внешний ID сообщества (может быть пустым);
//   - Path — страница, кэш которой нужно сбросить после записи.
type CreatePostInput struct {
	Text        string
	AuthorID    string
	CommunityID string
	Path        string
}

// AddCommentInput — ответ на пост/комментарий PostID.
type AddCommentInput struct {
	PostID   string
	Text     string
	AuthorID string
	Path     string
}

// CreatePost — бизнес-операция создания поста.
//
// Последовательность: валидация -> автор существует -> сообщество по внешнему ID -> вставка ->
// $push в posts автора -> $push в posts сообщества -> ревалидация Path.
// Операция не атомарна: при сбое на шагах после вставки пост остаётся в базе.
//
// Ошибки:
//   - *validation.Errors + ErrInvalidArgument — текст вне 3..1000 или пустой автор;
//   - ErrInvalidArgument — автора нет в хранилище (записей не делается);
//   - ErrInternal — прочие ошибки стораджа/БД/контекста.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	const op = "service/posts/CreatePost"

	lg := log.From(ctx).With(
		"op", op,
		"author_id", in.AuthorID,
		"community", in.CommunityID,
	)

	text := validation.Normalize(in.Text)
	if err := validation.Post(text, in.AuthorID); err != nil {
		lg.Warn("invalid argument", "err", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	// Автор проверяется до вставки, иначе в ленте остаётся пост без автора.
	if _, err := s.storage.UserByID(ctx, strings.TrimSpace(in.AuthorID)); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidID):
			lg.Warn("unknown author")
			return nil, fmt.Errorf("%s: %w: unknown author", op, ErrInvalidArgument)
		default:
			lg.Error("storage error on UserByID", "err", err)
			return nil, internal(op, fmt.Errorf("failed to create post: %w", err))
		}
	}

	communityID, err := s.resolveCommunity(ctx, in.CommunityID)
	if err != nil {
		lg.Error("storage error on CommunityByExternalID", "err", err)
		return nil, internal(op, err)
	}

	post, err := s.storage.CreatePost(ctx, models.Post{
		Text:        text,
		AuthorID:    strings.TrimSpace(in.AuthorID),
		CommunityID: communityID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidID) {
			lg.Warn("invalid author id")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		lg.Error("storage error on CreatePost", "err", err)
		return nil, internal(op, fmt.Errorf("failed to create post: %w", err))
	}

	if err := s.storage.AppendUserPost(ctx, post.AuthorID, post.ID); err != nil {
		lg.Error("storage error on AppendUserPost", "post_id", post.ID, "err", err)
		return nil, internal(op, fmt.Errorf("failed to create post: %w", err))
	}

	if communityID != "" {
		if err := s.storage.AppendCommunityPost(ctx, communityID, post.ID); err != nil {
			lg.Error("storage error on AppendCommunityPost", "post_id", post.ID, "err", err)
			return nil, internal(op, fmt.Errorf("failed to create post: %w", err))
		}
	}

	s.revalidate(ctx, in.Path)

	lg.Info("post created", "post_id", post.ID)
	return post, nil
}

// resolveCommunity переводит внешний ID сообщества во внутренний.
// Неизвестное сообщество не ошибка: пост создаётся без привязки.
func (s *Service) resolveCommunity(ctx context.Context, externalID string) (string, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", nil
	}

	c, err := s.storage.CommunityByExternalID(ctx, externalID)
	switch {
	case err == nil:
		return c.ID, nil
	case errors.Is(err, storage.ErrNotFound):
		log.From(ctx).Debug("community not found, posting without it", "community", externalID)
		return "", nil
	default:
		return "", err
	}
}

// FetchPosts — страница ленты: только посты верхнего уровня, новые сверху.
//
// page < 1 приводится к 1, pageSize > Limits.Max — к Limits.Max; pageSize < 0 — ErrInvalidArgument.
// pageSize == 0 даёт пустую страницу; IsNext тогда true, если в ленте есть хоть один пост.
func (s *Service) FetchPosts(ctx context.Context, page, pageSize int64) (*models.FeedPage, error) {
	const op = "service/posts/FetchPosts"

	lg := log.From(ctx).With("op", op, "page", page, "page_size", pageSize)

	if pageSize < 0 {
		lg.Warn("invalid argument: negative page size")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if page < 1 {
		page = 1
	}

	if limit := s.cfg.Limits.Max; limit > 0 && pageSize > limit {
		pageSize = limit
	}

	// Страница настолько далеко, что skip не помещается в int64: там заведомо пусто.
	if pageSize > 0 && page-1 > math.MaxInt64/pageSize {
		lg.Debug("page beyond range")
		return &models.FeedPage{Posts: []models.PostView{}}, nil
	}

	skip := (page - 1) * pageSize

	posts, err := s.storage.ListTopLevel(ctx, skip, pageSize)
	if err != nil {
		lg.Error("storage error on ListTopLevel", "err", err)
		return nil, internal(op, err)
	}

	total, err := s.storage.CountTopLevel(ctx)
	if err != nil {
		lg.Error("storage error on CountTopLevel", "err", err)
		return nil, internal(op, err)
	}

	views, err := s.assemble(ctx, posts, 1)
	if err != nil {
		lg.Error("populate failed", "err", err)
		return nil, internal(op, err)
	}

	return &models.FeedPage{
		Posts:  views,
		IsNext: total > skip+int64(len(posts)),
	}, nil
}

// FetchPostByID — пост с автором, сообществом и ответами до Limits.ThreadDepth уровней.
// Некорректный формат id трактуется как «нет такой записи».
func (s *Service) FetchPostByID(ctx context.Context, id string) (*models.PostView, error) {
	const op = "service/posts/FetchPostByID"

	lg := log.From(ctx).With("op", op, "post_id", id)

	post, err := s.storage.PostByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidID):
			lg.Warn("not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on PostByID", "err", err)
			return nil, internal(op, fmt.Errorf("unable to fetch post: %w", err))
		}
	}

	views, err := s.assemble(ctx, []models.Post{*post}, s.threadDepth())
	if err != nil {
		lg.Error("populate failed", "err", err)
		return nil, internal(op, fmt.Errorf("unable to fetch post: %w", err))
	}

	return &views[0], nil
}

// DeletePost удаляет пост вместе со всеми потомками и ссылками на них
// (User.Posts, Community.Posts, Children родителя).
//
// Отсутствующий пост — ErrNotFound без единой записи в хранилище.
func (s *Service) DeletePost(ctx context.Context, id, path string) error {
	const op = "service/posts/DeletePost"

	lg := log.From(ctx).With("op", op, "post_id", id)

	root, err := s.storage.PostByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidID):
			lg.Warn("not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on PostByID", "err", err)
			return internal(op, fmt.Errorf("failed to delete post: %w", err))
		}
	}

	descendants, err := s.collectDescendants(ctx, root.ID)
	if err != nil {
		lg.Error("storage error on ChildrenOf", "err", err)
		return internal(op, fmt.Errorf("failed to delete post: %w", err))
	}

	tree := buildTree(*root, descendants)

	deleted, err := s.storage.DeletePostTree(ctx, tree)
	if err != nil {
		lg.Error("storage error on DeletePostTree", "err", err)
		return internal(op, fmt.Errorf("failed to delete post: %w", err))
	}

	s.revalidate(ctx, path)

	lg.Info("post tree deleted", "deleted", deleted)
	return nil
}

// buildTree собирает множества id для DeletePostTree.
func buildTree(root models.Post, descendants []models.Post) storage.PostTree {
	tree := storage.PostTree{ParentID: root.ParentID}

	authors := make(map[string]struct{})
	communities := make(map[string]struct{})

	for _, p := range append([]models.Post{root}, descendants...) {
		tree.PostIDs = append(tree.PostIDs, p.ID)

		if _, ok := authors[p.AuthorID]; !ok && p.AuthorID != "" {
			authors[p.AuthorID] = struct{}{}
			tree.AuthorIDs = append(tree.AuthorIDs, p.AuthorID)
		}

		if _, ok := communities[p.CommunityID]; !ok && p.CommunityID != "" {
			communities[p.CommunityID] = struct{}{}
			tree.CommunityIDs = append(tree.CommunityIDs, p.CommunityID)
		}
	}

	return tree
}

// collectDescendants возвращает всех потомков rootID (без него самого) в прямом порядке:
// каждый ребёнок, затем его потомки. Один запрос ChildrenOf на уровень дерева.
// Порядок братьев — порядок выдачи хранилища. Повторно встреченные id (циклы) пропускаются.
func (s *Service) collectDescendants(ctx context.Context, rootID string) ([]models.Post, error) {
	visited := map[string]struct{}{rootID: {}}
	children := make(map[string][]models.Post)

	for frontier := []string{rootID}; len(frontier) > 0; {
		kids, err := s.storage.ChildrenOf(ctx, frontier)
		if err != nil {
			return nil, err
		}

		next := make([]string, 0, len(kids))
		for _, k := range kids {
			if _, seen := visited[k.ID]; seen {
				continue
			}
			visited[k.ID] = struct{}{}

			children[k.ParentID] = append(children[k.ParentID], k)
			next = append(next, k.ID)
		}

		frontier = next
	}

	out := make([]models.Post, 0, len(visited)-1)

	stack := pushReversed(nil, children[rootID])
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out = append(out, p)
		stack = pushReversed(stack, children[p.ID])
	}

	return out, nil
}

func pushReversed(stack, items []models.Post) []models.Post {
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, items[i])
	}

	return stack
}

// AddComment — ответ на существующий пост.
//
// Ошибки:
//   - *validation.Errors + ErrInvalidArgument — текст вне 3..1000, пустой автор;
//   - ErrNotFound — нет поста PostID;
//   - ErrInternal — прочие ошибки.
func (s *Service) AddComment(ctx context.Context, in AddCommentInput) (*models.Post, error) {
	const op = "service/posts/AddComment"

	lg := log.From(ctx).With("op", op, "post_id", in.PostID, "author_id", in.AuthorID)

	text := validation.Normalize(in.Text)
	if err := validation.Comment(text); err != nil {
		lg.Warn("invalid argument", "err", err)
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidArgument, err)
	}

	author := strings.TrimSpace(in.AuthorID)
	if author == "" {
		lg.Warn("invalid argument: empty author")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	parent, err := s.storage.PostByID(ctx, in.PostID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrInvalidID):
			lg.Warn("parent not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on PostByID", "err", err)
			return nil, internal(op, fmt.Errorf("failed to add comment: %w", err))
		}
	}

	comment, err := s.storage.CreatePost(ctx, models.Post{
		Text:     text,
		AuthorID: author,
		ParentID: parent.ID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidID) {
			lg.Warn("invalid author id")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		lg.Error("storage error on CreatePost", "err", err)
		return nil, internal(op, fmt.Errorf("failed to add comment: %w", err))
	}

	if err := s.storage.AppendChild(ctx, parent.ID, comment.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("parent deleted concurrently", "comment_id", comment.ID)
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on AppendChild", "err", err)
		return nil, internal(op, fmt.Errorf("failed to add comment: %w", err))
	}

	if err := s.storage.AppendUserPost(ctx, author, comment.ID); err != nil {
		lg.Error("storage error on AppendUserPost", "err", err)
		return nil, internal(op, fmt.Errorf("failed to add comment: %w", err))
	}

	s.revalidate(ctx, in.Path)

	lg.Info("comment added", "comment_id", comment.ID)
	return comment, nil
}

func (s *Service) threadDepth() int {
	if d := s.cfg.Limits.ThreadDepth; d > 0 {
		return d
	}

	return 2
}

// assemble строит представления roots с ответами до глубины depth.
// Ответы берутся из Children (порядок добавления), по одному запросу PostsByIDs на уровень;
// авторы и сообщества всех уровней грузятся батчами через loaders.
func (s *Service) assemble(ctx context.Context, roots []models.Post, depth int) ([]models.PostView, error) {
	if len(roots) == 0 {
		return []models.PostView{}, nil
	}

	byID := make(map[string]models.Post, len(roots))
	all := append([]models.Post(nil), roots...)

	level := roots
	for d := 0; d < depth && len(level) > 0; d++ {
		var ids []string
		for _, p := range level {
			for _, c := range p.Children {
				if _, ok := byID[c]; !ok {
					ids = append(ids, c)
				}
			}
		}

		if len(ids) == 0 {
			break
		}

		kids, err := s.storage.PostsByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("children: %w", err)
		}

		for _, k := range kids {
			byID[k.ID] = k
		}

		all = append(all, kids...)
		level = kids
	}

	authorIDs := make([]string, 0, len(all))
	communityIDs := make([]string, 0, len(all))
	for _, p := range all {
		authorIDs = append(authorIDs, p.AuthorID)
		if p.CommunityID != "" {
			communityIDs = append(communityIDs, p.CommunityID)
		}
	}

	ld := loaders.From(ctx, s.storage)

	authors, err := ld.Users(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	communities, err := ld.Communities(ctx, communityIDs)
	if err != nil {
		return nil, err
	}

	var build func(p models.Post, lvl int) models.PostView
	build = func(p models.Post, lvl int) models.PostView {
		v := models.PostView{Post: p, Replies: []models.PostView{}}

		if u, ok := authors[p.AuthorID]; ok {
			v.Author = models.NewUserRef(u)
		}

		if c, ok := communities[p.CommunityID]; ok {
			v.Community = models.NewCommunityRef(c)
		}

		if lvl < depth {
			for _, id := range p.Children {
				if child, ok := byID[id]; ok {
					v.Replies = append(v.Replies, build(child, lvl+1))
				}
			}
		}

		return v
	}

	out := make([]models.PostView, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r, 0))
	}

	return out, nil
}
