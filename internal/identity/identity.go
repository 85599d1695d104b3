// Package identity опознаёт вызывающего по сессионному токену провайдера идентичности.
// Сервис токены не выпускает, только проверяет подпись и стандартные claims.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pribylovaa/go-threads/internal/config"
	"github.com/pribylovaa/go-threads/internal/models"
	"github.com/pribylovaa/go-threads/pkg/log"
	"github.com/pribylovaa/go-threads/pkg/redact"
)

var (
	// ErrNoToken — в контексте нет bearer-токена.
	ErrNoToken = errors.New("no session token")
	// ErrInvalidToken — подпись/алгоритм/issuer/audience/subject не прошли проверку.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrTokenExpired — токен просрочен (с учётом leeway).
	ErrTokenExpired = errors.New("session token expired")
)

type ctxKey struct{}

// WithToken кладёт «сырой» bearer-токен в контекст.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKey{}, token)
}

// TokenFrom достаёт токен из контекста.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ctxKey{}).(string)
	return token, ok && token != ""
}

// SessionClaims — claims сессии провайдера. sub — внешний ID пользователя.
type SessionClaims struct {
	Username  string `json:"username,omitempty"`
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver проверяет HS256-токены общим секретом.
type JWTResolver struct {
	cfg config.AuthConfig
}

// NewJWTResolver создаёт резолвер. Пустой секрет делает любой токен невалидным.
func NewJWTResolver(cfg config.AuthConfig) *JWTResolver {
	return &JWTResolver{cfg: cfg}
}

// Identify возвращает идентичность по токену из контекста.
func (r *JWTResolver) Identify(ctx context.Context) (models.Identity, error) {
	const op = "identity/Identify"

	token, ok := TokenFrom(ctx)
	if !ok {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	id, err := r.Parse(token)
	if err != nil {
		log.From(ctx).Debug("session token rejected",
			"op", op,
			"token", redact.Token(token),
			"err", err,
		)
		return models.Identity{}, err
	}

	return id, nil
}

// Parse проверяет токен и переводит claims в models.Identity.
func (r *JWTResolver) Parse(tokenStr string) (models.Identity, error) {
	const op = "identity/Parse"

	if r.cfg.Secret == "" {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(r.cfg.Leeway),
		jwt.WithExpirationRequired(),
	}

	if r.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.cfg.Issuer))
	}

	if len(r.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(r.cfg.Audience...))
	}

	token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenStr), &SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(r.cfg.Secret), nil
		},
		opts...,
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Identity{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return models.Identity{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return models.Identity{
		ExternalID: strings.TrimSpace(claims.Subject),
		Username:   claims.Username,
		Name:       claims.Name,
		FirstName:  claims.FirstName,
		Image:      claims.ImageURL,
	}, nil
}
