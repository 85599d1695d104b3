// errors стандартизирует ответы об ошибках HTTP-слоя threads-сервиса.
// На вход он принимает ошибку сервисного слоя (sentinel + *validation.Errors),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей;
//   - ошибки по полям формы, если это ошибка валидации.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-threads/internal/service"
	"github.com/pribylovaa/go-threads/internal/validation"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrBadRequest — локальная ошибка разбора запроса в хендлере (битый JSON, параметры).
var ErrBadRequest = stderrors.New("bad request")

// FieldError — нарушение по одному полю формы.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	RequestID string       `json:"request_id,omitempty"`
	Fields    []FieldError `json:"fields,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку сервиса в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal;
//   - *validation.Errors / ErrInvalidArgument / ErrBadRequest -> 400 (+ fields);
//   - ErrUnauthenticated -> 401;
//   - ErrNotFound -> 404;
//   - context.DeadlineExceeded -> 504, context.Canceled -> 499;
//   - прочее -> 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{
			Error: APIError{Code: "internal", Message: "internal error"},
		}
	}

	var verrs *validation.Errors
	switch {
	case stderrors.As(err, &verrs):
		fields := make([]FieldError, 0, len(verrs.Fields))
		for _, f := range verrs.Fields {
			fields = append(fields, FieldError{Field: f.Field, Message: f.Message})
		}

		return http.StatusBadRequest, ErrorResponse{
			Error: APIError{Code: "invalid_argument", Message: "invalid argument", Fields: fields},
		}
	case stderrors.Is(err, service.ErrInvalidArgument), stderrors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{
			Error: APIError{Code: "invalid_argument", Message: "invalid argument"},
		}
	case stderrors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorResponse{
			Error: APIError{Code: "unauthenticated", Message: "unauthenticated"},
		}
	case stderrors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: APIError{Code: "not_found", Message: "not found"},
		}
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: APIError{Code: "deadline_exceeded", Message: "deadline exceeded"},
		}
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, ErrorResponse{
			Error: APIError{Code: "canceled", Message: "canceled"},
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: APIError{Code: "internal", Message: "internal error"},
		}
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
