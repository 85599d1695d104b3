// service содержит бизнес-логику threads-сервиса.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-threads/internal/config"
	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/internal/storage"
	"github.com/pribylovaa/go-threads/pkg/log"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — вызывающий не опознан провайдером идентичности.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInternal — внутренняя ошибка (стораж/БД/контекст/и т.д.).
	ErrInternal = errors.New("internal")
)

// Notifier — сигнал внешнему кэшу страниц, что путь path устарел.
type Notifier interface {
	Revalidate(ctx context.Context, path string) error
}

// IdentityResolver — провайдер идентичности: кто делает запрос.
type IdentityResolver interface {
	Identify(ctx context.Context) (models.Identity, error)
}

// Service — описывает бизнес-логику threads-service.
type Service struct {
	storage  storage.Storage
	notifier Notifier
	identity IdentityResolver
	cfg      config.Config
}

// New создает новый экземпляр Service. notifier может быть nil — тогда сигналы не отправляются.
func New(storage storage.Storage, notifier Notifier, identity IdentityResolver, cfg config.Config) *Service {
	return &Service{
		storage:  storage,
		notifier: notifier,
		identity: identity,
		cfg:      cfg,
	}
}

// internal заворачивает ошибку стораджа: снаружи виден ErrInternal, исходный текст сохраняется.
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrInternal, err)
}

// revalidate отправляет сигнал ревалидации. Мутация к этому моменту уже выполнена,
// поэтому сбой только логируется.
func (s *Service) revalidate(ctx context.Context, path string) {
	const op = "service/service/revalidate"

	if path == "" || s.notifier == nil {
		return
	}

	if err := s.notifier.Revalidate(ctx, path); err != nil {
		log.From(ctx).Warn("revalidate failed", "op", op, "path", path, "err", err)
	}
}
