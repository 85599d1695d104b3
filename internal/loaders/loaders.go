// Package loaders собирает обращения к авторам и сообществам в рамках одного запроса
// в батчи (graph-gophers/dataloader): N постов -> один запрос $in на коллекцию.
package loaders

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/graph-gophers/dataloader"
	"github.com/pribylovaa/go-threads/internal/models"
)

// wait — окно, в течение которого Load'ы копятся в один батч.
const wait = time.Millisecond

// Store — часть хранилища, нужная лоадерам.
type Store interface {
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	CommunitiesByIDs(ctx context.Context, ids []string) ([]models.Community, error)
}

// Loaders — лоадеры одного запроса. Кэш живёт столько же, сколько запрос.
type Loaders struct {
	users       *dataloader.Loader
	communities *dataloader.Loader
}

// New создаёт свежий набор лоадеров поверх store.
func New(store Store) *Loaders {
	return &Loaders{
		users:       dataloader.NewBatchedLoader(usersBatch(store), dataloader.WithWait(wait)),
		communities: dataloader.NewBatchedLoader(communitiesBatch(store), dataloader.WithWait(wait)),
	}
}

type ctxKey struct{}

// Into кладёт лоадеры в контекст.
func Into(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт лоадеры из контекста; вне HTTP-запроса создаёт новые поверх store.
func From(ctx context.Context, store Store) *Loaders {
	if l, ok := ctx.Value(ctxKey{}).(*Loaders); ok && l != nil {
		return l
	}

	return New(store)
}

// Middleware создаёт лоадеры на каждый запрос.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(Into(r.Context(), New(store))))
		})
	}
}

// Users возвращает найденных пользователей по id; отсутствующие в карту не попадают.
func (l *Loaders) Users(ctx context.Context, ids []string) (map[string]models.User, error) {
	out := make(map[string]models.User, len(ids))

	err := resolve(ctx, l.users, ids, func(id string, data interface{}) {
		if u, ok := data.(*models.User); ok && u != nil {
			out[id] = *u
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	return out, nil
}

// Communities — то же для сообществ.
func (l *Loaders) Communities(ctx context.Context, ids []string) (map[string]models.Community, error) {
	out := make(map[string]models.Community, len(ids))

	err := resolve(ctx, l.communities, ids, func(id string, data interface{}) {
		if c, ok := data.(*models.Community); ok && c != nil {
			out[id] = *c
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load communities: %w", err)
	}

	return out, nil
}

// resolve сначала ставит все Load'ы в очередь, затем ждёт thunk'и,
// чтобы ключи попали в один батч.
func resolve(ctx context.Context, ld *dataloader.Loader, ids []string, put func(id string, data interface{})) error {
	seen := make(map[string]struct{}, len(ids))
	thunks := make(map[string]dataloader.Thunk, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		thunks[id] = ld.Load(ctx, dataloader.StringKey(id))
	}

	for id, thunk := range thunks {
		data, err := thunk()
		if err != nil {
			return err
		}

		put(id, data)
	}

	return nil
}

func usersBatch(store Store) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]string, len(keys))
		for i, key := range keys {
			ids[i] = key.String()
		}

		users, err := store.UsersByIDs(ctx, ids)
		if err != nil {
			return failAll(len(keys), err)
		}

		byID := make(map[string]models.User, len(users))
		for _, u := range users {
			byID[u.ID] = u
		}

		// Результат обязан совпадать с ключами по длине и порядку.
		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if u, ok := byID[id]; ok {
				results[i] = &dataloader.Result{Data: &u}
				continue
			}
			results[i] = &dataloader.Result{}
		}

		return results
	}
}

func communitiesBatch(store Store) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]string, len(keys))
		for i, key := range keys {
			ids[i] = key.String()
		}

		communities, err := store.CommunitiesByIDs(ctx, ids)
		if err != nil {
			return failAll(len(keys), err)
		}

		byID := make(map[string]models.Community, len(communities))
		for _, c := range communities {
			byID[c.ID] = c
		}

		results := make([]*dataloader.Result, len(keys))
		for i, id := range ids {
			if c, ok := byID[id]; ok {
				results[i] = &dataloader.Result{Data: &c}
				continue
			}
			results[i] = &dataloader.Result{}
		}

		return results
	}
}

func failAll(n int, err error) []*dataloader.Result {
	results := make([]*dataloader.Result, n)
	for i := range results {
		results[i] = &dataloader.Result{Error: err}
	}

	return results
}
