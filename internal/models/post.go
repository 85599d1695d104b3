// Package models содержит доменные сущности threads-сервиса.
package models

import "time"

// Post — пост или комментарий (MongoDB, коллекция posts).
// Важно:
//   - ID — ObjectID MongoDB. Наружу/вовнутрь конвертируется в string (hex).
//   - AuthorID — внутренний ID пользователя (User.ID), обязателен.
//   - ParentID — пустой у постов верхнего уровня; у комментариев — ID родителя.
//   - CommunityID — опциональная привязка к сообществу (внутренний ID).
//   - Children — прямые ответы в порядке добавления. Поддерживается вручную
//     сервисным слоем, хранилище каскадов не делает.
type Post struct {
	ID          string
	Text        string
	AuthorID    string
	ParentID    string
	CommunityID string
	Children    []string
	CreatedAt   time.Time
}

// IsTopLevel сообщает, что пост не является ответом.
func (p Post) IsTopLevel() bool {
	return p.ParentID == ""
}
