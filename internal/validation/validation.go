// Package validation описывает схемы отправки постов и комментариев.
//
// Проверки выполняются до любых обращений к хранилищу и возвращают
// ошибки по каждому полю отдельно (*Errors).
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Границы длины текста (в символах, не байтах).
const (
	MinTextLen = 3
	MaxTextLen = 1000
)

// PostInput — форма создания поста.
type PostInput struct {
	Post      string `json:"post" validate:"required,min=3,max=1000"`
	AccountID string `json:"accountId" validate:"required"`
}

// CommentInput — форма ответа в ветке.
type CommentInput struct {
	Thread string `json:"thread" validate:"required,min=3,max=1000"`
}

// ProfileInput — форма онбординга профиля.
type ProfileInput struct {
	Name     string `json:"name" validate:"required,min=3,max=30"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Bio      string `json:"bio" validate:"required,min=3,max=1000"`
	Image    string `json:"image" validate:"omitempty,url"`
}

// FieldError — нарушение ограничения одного поля.
type FieldError struct {
	Field   string
	Message string
}

// Errors — набор нарушений; реализует error.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// First возвращает первое нарушение (или пустую структуру).
func (e *Errors) First() FieldError {
	if len(e.Fields) == 0 {
		return FieldError{}
	}

	return e.Fields[0]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В ошибках используем имена полей формы (json-теги).
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return v
}

// Normalize убирает крайние пробелы. Текст хранится как прислан:
// экранирование при выводе — забота слоя отображения.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Post проверяет форму поста.
func Post(text, accountID string) error {
	return Struct(PostInput{Post: text, AccountID: strings.TrimSpace(accountID)})
}

// PostText проверяет только поле post, когда автор ещё не определён
// (хендлер валидирует форму до опознания вызывающего).
func PostText(text string) error {
	return fieldErrors(validate.StructPartial(PostInput{Post: text}, "Post"))
}

// Comment проверяет форму комментария.
func Comment(text string) error {
	return Struct(CommentInput{Thread: text})
}

// Profile нормализует и проверяет форму профиля.
func Profile(in ProfileInput) (ProfileInput, error) {
	in.Name = Normalize(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Bio = Normalize(in.Bio)
	in.Image = strings.TrimSpace(in.Image)

	return in, Struct(in)
}

// Struct прогоняет структуру через правила из тегов validate.
// Возвращает nil или *Errors.
func Struct(v any) error {
	return fieldErrors(validate.Struct(v))
}

func fieldErrors(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}

	out := &Errors{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}

	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("minimum %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("maximum %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
