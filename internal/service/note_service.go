package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/entity"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/logger"
	"notekeeper-be/internal/repository/contract"
	"notekeeper-be/internal/repository/specification"
	"notekeeper-be/internal/repository/unitofwork"
	"notekeeper-be/pkg/events"

	"github.com/google/uuid"
)

const msgNoteNotFound = "Note not found"

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	TogglePin(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error)
}

type noteService struct {
	uowFactory unitofwork.RepositoryFactory
	activity   IActivityPublisher
	logger     logger.ILogger
}

func NewNoteService(uowFactory unitofwork.RepositoryFactory, activity IActivityPublisher, log logger.ILogger) INoteService {
	return &noteService{
		uowFactory: uowFactory,
		activity:   activity,
		logger:     log,
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	if isBlank(req.Title) {
		return nil, apperror.Validation("title is required")
	}
	if isBlank(req.Content) {
		return nil, apperror.Validation("content is required")
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	// CreatedAt is stamped here, not by the database.
	note := entity.Note{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		IsPinned:  false,
		Tags:      tags,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, c.internal("failed to create note", userId, err)
	}

	c.publish(ctx, events.NoteCreated, &note)
	return toNoteResponse(&note), nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	if req.Title == nil && req.Content == nil && req.Tags == nil {
		return nil, apperror.Validation("no changes provided!")
	}
	if req.Title != nil && isBlank(*req.Title) {
		return nil, apperror.Validation("title must not be empty")
	}
	if req.Content != nil && isBlank(*req.Content) {
		return nil, apperror.Validation("content must not be empty")
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.OwnedNote(req.Id, userId)...)
	if err != nil {
		return nil, c.internal("failed to load note", userId, err)
	}
	if note == nil {
		return nil, apperror.NotFound(msgNoteNotFound)
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = *req.Tags
		if note.Tags == nil {
			note.Tags = []string{}
		}
	}
	if req.IsPinned != nil {
		note.IsPinned = *req.IsPinned
	}

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		if errors.Is(err, contract.ErrNoteNotFound) {
			return nil, apperror.NotFound(msgNoteNotFound)
		}
		return nil, c.internal("failed to update note", userId, err)
	}

	c.publish(ctx, events.NoteUpdated, note)
	return toNoteResponse(note), nil
}

func (c *noteService) TogglePin(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specification.OwnedNote(id, userId)...)
	if err != nil {
		return nil, c.internal("failed to load note", userId, err)
	}
	if note == nil {
		return nil, apperror.NotFound(msgNoteNotFound)
	}

	note.IsPinned = !note.IsPinned
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		if errors.Is(err, contract.ErrNoteNotFound) {
			return nil, apperror.NotFound(msgNoteNotFound)
		}
		return nil, c.internal("failed to toggle pin", userId, err)
	}

	c.publish(ctx, events.NotePinToggled, note)
	return toNoteResponse(note), nil
}

// Delete succeeds whether or not a matching note existed.
func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	removed, err := uow.NoteRepository().Delete(ctx, specification.OwnedNote(id, userId)...)
	if err != nil {
		return c.internal("failed to delete note", userId, err)
	}

	if removed > 0 {
		c.activity.Publish(ctx, events.New(events.NoteDeleted, map[string]interface{}{
			"note_id": id.String(),
			"user_id": userId.String(),
		}))
	}
	return nil
}

func (c *noteService) List(ctx context.Context, userId uuid.UUID) ([]*dto.NoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, c.internal("failed to list notes", userId, err)
	}

	res := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		res = append(res, toNoteResponse(note))
	}
	return res, nil
}

func (c *noteService) publish(ctx context.Context, eventType string, note *entity.Note) {
	c.activity.Publish(ctx, events.New(eventType, map[string]interface{}{
		"note_id":   note.Id.String(),
		"user_id":   note.UserId.String(),
		"title":     note.Title,
		"is_pinned": note.IsPinned,
	}))
}

func (c *noteService) internal(message string, userId uuid.UUID, err error) error {
	c.logger.Error("note_service", message, map[string]interface{}{
		"user_id": userId.String(),
		"error":   err,
	})
	return apperror.Internal(err)
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return &dto.NoteResponse{
		Id:        note.Id,
		Title:     note.Title,
		Content:   note.Content,
		IsPinned:  note.IsPinned,
		Tags:      tags,
		UserId:    note.UserId,
		CreatedOn: note.CreatedAt,
	}
}
