package service

// Тесты сервисного слоя поверх хранилища в памяти (internal/storage/memory):
// проверяем наблюдаемые свойства операций над постами целиком, без моков.

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pribylovaa/go-threads/internal/config"
	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage/memory"
	"github.com/pribylovaa/go-threads/internal/validation"
	"github.com/stretchr/testify/require"
)

// recNotifier запоминает ревалидированные пути.
type recNotifier struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (n *recNotifier) Revalidate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.paths = append(n.paths, path)
	return n.err
}

// staticIdentity — провайдер, всегда возвращающий одну и ту же идентичность.
type staticIdentity struct {
	id  models.Identity
	err error
}

func (s staticIdentity) Identify(context.Context) (models.Identity, error) {
	return s.id, s.err
}

func testConfig() config.Config {
	return config.Config{
		Limits: config.LimitsConfig{Default: 20, Max: 100, ThreadDepth: 2},
	}
}

// newMemService — сервис поверх чистого хранилища в памяти с тикающими часами.
func newMemService(t *testing.T) (*Service, *memory.Store, *recNotifier) {
	t.Helper()

	store := memory.New()
	cur := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	})

	n := &recNotifier{}
	ident := staticIdentity{id: models.Identity{ExternalID: "user_ext", Username: "ann", Name: "Ann"}}

	return New(store, n, ident, testConfig()), store, n
}

func mustUser(t *testing.T, store *memory.Store, ext string) *models.User {
	t.Helper()

	u, err := store.CreateUser(context.Background(), models.User{ExternalID: ext, Name: "User " + ext})
	require.NoError(t, err)
	return u
}

func mustPost(t *testing.T, s *Service, author, text string) *models.Post {
	t.Helper()

	p, err := s.CreatePost(context.Background(), CreatePostInput{Text: text, AuthorID: author})
	require.NoError(t, err)
	return p
}

func mustComment(t *testing.T, s *Service, parent, author, text string) *models.Post {
	t.Helper()

	c, err := s.AddComment(context.Background(), AddCommentInput{PostID: parent, Text: text, AuthorID: author})
	require.NoError(t, err)
	return c
}

// TestCreatePost_AppearsInAuthorAndCommunity — пост попадает в списки автора и сообщества, путь ревалидируется.
func TestCreatePost_AppearsInAuthorAndCommunity(t *testing.T) {
	s, store, n := newMemService(t)
	ctx := context.Background()

	u := mustUser(t, store, "u1")
	comm := store.PutCommunity(models.Community{ExternalID: "org_1", Name: "Org"})

	p, err := s.CreatePost(ctx, CreatePostInput{Text: "hello world", AuthorID: u.ID, CommunityID: "org_1", Path: "/"})
	require.NoError(t, err)
	require.Equal(t, comm.ID, p.CommunityID)
	require.True(t, p.IsTopLevel())

	gotU, err := store.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{p.ID}, gotU.Posts)

	cs, err := store.CommunitiesByIDs(ctx, []string{comm.ID})
	require.NoError(t, err)
	require.Equal(t, []string{p.ID}, cs[0].Posts)

	require.Equal(t, []string{"/"}, n.paths)
}

// TestCreatePost_UnknownCommunity — неизвестное сообщество не мешает созданию поста.
func TestCreatePost_UnknownCommunity(t *testing.T) {
	s, store, _ := newMemService(t)

	u := mustUser(t, store, "u1")

	p, err := s.CreatePost(context.Background(), CreatePostInput{Text: "hello", AuthorID: u.ID, CommunityID: "org_missing"})
	require.NoError(t, err)
	require.Empty(t, p.CommunityID)
}

// TestCreatePost_ValidationBounds — 2 и 1001 символ отклоняются до обращения к хранилищу.
func TestCreatePost_ValidationBounds(t *testing.T) {
	s, store, _ := newMemService(t)
	u := mustUser(t, store, "u1")

	for _, bad := range []string{"ab", strings.Repeat("x", 1001), "   ", " a "} {
		before := store.Writes()

		_, err := s.CreatePost(context.Background(), CreatePostInput{Text: bad, AuthorID: u.ID})
		require.ErrorIs(t, err, ErrInvalidArgument)

		var verrs *validation.Errors
		require.True(t, errors.As(err, &verrs))
		require.Equal(t, "post", verrs.First().Field)

		require.Equal(t, before, store.Writes())
	}

	for _, ok := range []string{"abc", strings.Repeat("x", 1000)} {
		_, err := s.CreatePost(context.Background(), CreatePostInput{Text: ok, AuthorID: u.ID})
		require.NoError(t, err)
	}

	_, err := s.CreatePost(context.Background(), CreatePostInput{Text: "hello", AuthorID: "  "})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// TestCreatePost_TextStoredAsSubmitted — разметка и сущности не переписываются
// и считаются в длину как есть.
func TestCreatePost_TextStoredAsSubmitted(t *testing.T) {
	s, store, _ := newMemService(t)
	u := mustUser(t, store, "u1")
	ctx := context.Background()

	for _, text := range []string{"x<y", "if a<b and c>d then swap", "use &lt;b&gt; for bold", "<b>bold</b>"} {
		p, err := s.CreatePost(ctx, CreatePostInput{Text: text, AuthorID: u.ID})
		require.NoError(t, err, text)
		require.Equal(t, text, p.Text)

		got, err := store.PostByID(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, text, got.Text)
	}

	root := mustPost(t, s, u.ID, "root")
	c, err := s.AddComment(ctx, AddCommentInput{PostID: root.ID, Text: "a<b", AuthorID: u.ID})
	require.NoError(t, err)
	require.Equal(t, "a<b", c.Text)
}

// TestCreatePost_UnknownAuthor — пост без существующего автора не вставляется.
func TestCreatePost_UnknownAuthor(t *testing.T) {
	s, store, _ := newMemService(t)
	ctx := context.Background()

	before := store.Writes()
	_, err := s.CreatePost(ctx, CreatePostInput{Text: "hello", AuthorID: "650000000000000000000fff"})
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, before, store.Writes())

	n, err := store.CountTopLevel(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

// TestCreatePost_FetchRoundTrip — созданный пост читается с тем же текстом и автором.
func TestCreatePost_FetchRoundTrip(t *testing.T) {
	s, store, _ := newMemService(t)
	u := mustUser(t, store, "u1")

	p := mustPost(t, s, u.ID, "  hello there ")

	got, err := s.FetchPostByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, "hello there", got.Text)
	require.Equal(t, u.ID, got.AuthorID)
	require.NotNil(t, got.Author)
	require.Equal(t, u.Name, got.Author.Name)
	require.Nil(t, got.Community)
	require.Empty(t, got.Replies)
}

// TestFetchPosts_Pagination — 25 постов, страница 20: 20/IsNext, затем 5/!IsNext.
func TestFetchPosts_Pagination(t *testing.T) {
	s, store, _ := newMemService(t)
	ctx := context.Background()
	u := mustUser(t, store, "u1")

	var ids []string
	for i := 0; i < 25; i++ {
		ids = append(ids, mustPost(t, s, u.ID, "post text").ID)
	}

	first, err := s.FetchPosts(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, first.Posts, 20)
	require.True(t, first.IsNext)
	require.Equal(t, ids[24], first.Posts[0].ID)

	second, err := s.FetchPosts(ctx, 2, 20)
	require.NoError(t, err)
	require.Len(t, second.Posts, 5)
	require.False(t, second.IsNext)
	require.Equal(t, ids[0], second.Posts[4].ID)

	clamped, err := s.FetchPosts(ctx, 0, 20)
	require.NoError(t, err)
	require.Equal(t, first.Posts[0].ID, clamped.Posts[0].ID)

	empty, err := s.FetchPosts(ctx, 1, 0)
	require.NoError(t, err)
	require.Empty(t, empty.Posts)
	require.True(t, empty.IsNext)

	beyond, err := s.FetchPosts(ctx, 5, 20)
	require.NoError(t, err)
	require.Empty(t, beyond.Posts)
	require.False(t, beyond.IsNext)

	_, err = s.FetchPosts(ctx, 1, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

// TestFetchPosts_HugePage — страница за пределами int64-смещения пуста и последняя.
func TestFetchPosts_HugePage(t *testing.T) {
	s, store, _ := newMemService(t)
	u := mustUser(t, store, "u1")

	for i := 0; i < 3; i++ {
		mustPost(t, s, u.ID, "post "+strconv.Itoa(i))
	}

	page, err := s.FetchPosts(context.Background(), math.MaxInt64/10, 20)
	require.NoError(t, err)
	require.Empty(t, page.Posts)
	require.False(t, page.IsNext)

	page, err = s.FetchPosts(context.Background(), math.MaxInt64, 1)
	require.NoError(t, err)
	require.Empty(t, page.Posts)
	require.False(t, page.IsNext)
}

func TestFetchPosts_EmptyStore(t *testing.T) {
	s, _, _ := newMemService(t)

	page, err := s.FetchPosts(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Empty(t, page.Posts)
	require.False(t, page.IsNext)
}

// TestFetchPosts_TopLevelOnlyWithFirstLevelReplies — ответы не попадают в ленту,
// у постов подтянут только первый уровень ответов.
func TestFetchPosts_TopLevelOnlyWithFirstLevelReplies(t *testing.T) {
	s, store, _ := newMemService(t)
	u := mustUser(t, store, "u1")
	v := mustUser(t, store, "u2")

	root := mustPost(t, s, u.ID, "root post")
	reply := mustComment(t, s, root.ID, v.ID, "reply one")
	mustComment(t, s, reply.ID, u.ID, "nested reply")

	page, err := s.FetchPosts(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)

	got := page.Posts[0]
	require.Equal(t, root.ID, got.ID)
	require.Len(t, got.Replies, 1)
	require.Equal(t, reply.ID, got.Replies[0].ID)
	require.Equal(t, v.Name, got.Replies[0].Author.Name)
	require.Empty(t, got.Replies[0].Replies)
	require.Len(t, got.Replies[0].Children, 1)
}

// TestFetchPostByID_TwoLevels — ветка собирается до внуков включительно, глубже — только ID.
func TestFetchPostByID_TwoLevels(t *testing.T) {
	s, store, _ := newMemService(t)
	u := mustUser(t, store, "u1")

	root := mustPost(t, s, u.ID, "root post")
	c1 := mustComment(t, s, root.ID, u.ID, "child one")
	c2 := mustComment(t, s, root.ID, u.ID, "child two")
	g1 := mustComment(t, s, c1.ID, u.ID, "grandchild")
	gg := mustComment(t, s, g1.ID, u.ID, "too deep")

	got, err := s.FetchPostByID(context.Background(), root.ID)
	require.NoError(t, err)

	require.Len(t, got.Replies, 2)
	require.Equal(t, c1.ID, got.Replies[0].ID)
	require.Equal(t, c2.ID, got.Replies[1].ID)

	require.Len(t, got.Replies[0].Replies, 1)
	grand := got.Replies[0].Replies[0]
	require.Equal(t, g1.ID, grand.ID)
	require.NotNil(t, grand.Author)
	require.Empty(t, grand.Replies)
	require.Equal(t, []string{gg.ID}, grand.Children)
}

func TestFetchPostByID_NotFound(t *testing.T) {
	s, _, _ := newMemService(t)

	_, err := s.FetchPostByID(context.Background(), "0123456789abcdef01234567")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.FetchPostByID(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestDeletePost_RemovesSubtreeAndReferences — удаляются корень и все N потомков,
// ссылки на них исчезают из пользователей, сообщества и родителя.
func TestDeletePost_RemovesSubtreeAndReferences(t *testing.T) {
	s, store, n := newMemService(t)
	ctx := context.Background()

	u := mustUser(t, store, "u1")
	v := mustUser(t, store, "u2")
	comm := store.PutCommunity(models.Community{ExternalID: "org_1"})

	keep, err := s.CreatePost(ctx, CreatePostInput{Text: "keep me", AuthorID: u.ID, CommunityID: "org_1"})
	require.NoError(t, err)
	root, err := s.CreatePost(ctx, CreatePostInput{Text: "root post", AuthorID: u.ID, CommunityID: "org_1"})
	require.NoError(t, err)

	c1 := mustComment(t, s, root.ID, v.ID, "child one")
	c2 := mustComment(t, s, root.ID, u.ID, "child two")
	g1 := mustComment(t, s, c1.ID, v.ID, "grandchild")
	other := mustComment(t, s, keep.ID, v.ID, "other branch")

	require.NoError(t, s.DeletePost(ctx, root.ID, "/profile"))

	for _, id := range []string{root.ID, c1.ID, c2.ID, g1.ID} {
		_, err := store.PostByID(ctx, id)
		require.Error(t, err, id)
	}

	gotU, _ := store.UserByID(ctx, u.ID)
	require.Equal(t, []string{keep.ID}, gotU.Posts)

	gotV, _ := store.UserByID(ctx, v.ID)
	require.Equal(t, []string{other.ID}, gotV.Posts)

	cs, _ := store.CommunitiesByIDs(ctx, []string{comm.ID})
	require.Equal(t, []string{keep.ID}, cs[0].Posts)

	page, err := s.FetchPosts(ctx, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	require.Equal(t, keep.ID, page.Posts[0].ID)

	require.Contains(t, n.paths, "/profile")
}

// TestDeletePost_Comment_PullsFromParent — удалённый ответ исчезает из Children родителя.
func TestDeletePost_Comment_PullsFromParent(t *testing.T) {
	s, store, _ := newMemService(t)
	ctx := context.Background()
	u := mustUser(t, store, "u1")

	root := mustPost(t, s, u.ID, "root post")
	c1 := mustComment(t, s, root.ID, u.ID, "child one")
	c2 := mustComment(t, s, root.ID, u.ID, "child two")

	require.NoError(t, s.DeletePost(ctx, c1.ID, ""))

	got, err := store.PostByID(ctx, root.ID)
	require.NoError(t, err)
	require.Equal(t, []string{c2.ID}, got.Children)
}

// TestDeletePost_Missing_NoWrites — удаление несуществующего поста ничего не пишет.
func TestDeletePost_Missing_NoWrites(t *testing.T) {
	s, store, n := newMemService(t)
	u := mustUser(t, store, "u1")
	mustPost(t, s, u.ID, "some post")

	before := store.Writes()
	paths := len(n.paths)

	err := s.DeletePost(context.Background(), "0123456789abcdef01234567", "/")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, before, store.Writes())
	require.Len(t, n.paths, paths)
}

// TestAddComment_AppendsChild — у родителя ровно на одного ребёнка больше, ребёнок знает родителя.
func TestAddComment_AppendsChild(t *testing.T) {
	s, store, n := newMemService(t)
	ctx := context.Background()
	u := mustUser(t, store, "u1")

	root := mustPost(t, s, u.ID, "root post")
	first := mustComment(t, s, root.ID, u.ID, "first")

	c, err := s.AddComment(ctx, AddCommentInput{PostID: root.ID, Text: "second", AuthorID: u.ID, Path: "/thread/" + root.ID})
	require.NoError(t, err)
	require.Equal(t, root.ID, c.ParentID)
	require.False(t, c.IsTopLevel())

	got, _ := store.PostByID(ctx, root.ID)
	require.Equal(t, []string{first.ID, c.ID}, got.Children)

	gotU, _ := store.UserByID(ctx, u.ID)
	require.Contains(t, gotU.Posts, c.ID)

	require.Contains(t, n.paths, "/thread/"+root.ID)
}

func TestAddComment_Errors(t *testing.T) {
	s, store, _ := newMemService(t)
	ctx := context.Background()
	u := mustUser(t, store, "u1")
	root := mustPost(t, s, u.ID, "root post")

	_, err := s.AddComment(ctx, AddCommentInput{PostID: root.ID, Text: "no", AuthorID: u.ID})
	require.ErrorIs(t, err, ErrInvalidArgument)
	var verrs *validation.Errors
	require.True(t, errors.As(err, &verrs))
	require.Equal(t, "thread", verrs.First().Field)

	_, err = s.AddComment(ctx, AddCommentInput{PostID: root.ID, Text: "fine", AuthorID: ""})
	require.ErrorIs(t, err, ErrInvalidArgument)

	before := store.Writes()
	_, err = s.AddComment(ctx, AddCommentInput{PostID: "0123456789abcdef01234567", Text: "fine", AuthorID: u.ID})
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, before, store.Writes())
}

// TestRevalidateFailure_NotReturned — сбой ревалидации не ломает успешную мутацию.
func TestRevalidateFailure_NotReturned(t *testing.T) {
	s, store, n := newMemService(t)
	n.err = errors.New("redis down")
	u := mustUser(t, store, "u1")

	_, err := s.CreatePost(context.Background(), CreatePostInput{Text: "hello", AuthorID: u.ID, Path: "/"})
	require.NoError(t, err)
}
