package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags"`
}

// UpdateNoteRequest uses pointers so an absent field is distinguishable from
// a zero value: isPinned=false is an explicit unpin.
type UpdateNoteRequest struct {
	Id       uuid.UUID `json:"-"`
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
}

type NoteResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPinned  bool      `json:"isPinned"`
	Tags      []string  `json:"tags"`
	UserId    uuid.UUID `json:"userId"`
	CreatedOn time.Time `json:"createdOn"`
}
