package controller

import (
	"notekeeper-be/internal/dto"
	"notekeeper-be/internal/pkg/apperror"
	"notekeeper-be/internal/pkg/serverutils"
	"notekeeper-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	TogglePin(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, authMiddleware fiber.Handler) {
	r.Post("/add-note", authMiddleware, c.Create)
	r.Put("/edit-note/:id", authMiddleware, c.Update)
	r.Get("/fetch-all-notes", authMiddleware, c.List)
	r.Delete("/delete-note/:id", authMiddleware, c.Delete)
	r.Put("/isPinned/:id", authMiddleware, c.TogglePin)
}

// noteID parses the :id param. ok is false for ids that cannot name any note.
func noteID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Params("id"))
	return id, err == nil
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := serverutils.ParseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note added successfully", fiber.Map{
		"user": userId,
		"note": res,
	}))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}

	id, ok := noteID(ctx)
	if !ok {
		return apperror.NotFound("Note not found")
	}

	var req dto.UpdateNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	req.Id = id

	res, err := c.noteService.Update(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note updated successfully", fiber.Map{"note": res}))
}

func (c *noteController) TogglePin(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}

	id, ok := noteID(ctx)
	if !ok {
		return apperror.NotFound("Note not found")
	}

	res, err := c.noteService.TogglePin(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Note pin status updated successfully", fiber.Map{"note": res}))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}

	// A malformed id matches nothing, and deleting nothing succeeds.
	if id, ok := noteID(ctx); ok {
		if err := c.noteService.Delete(ctx.UserContext(), userId, id); err != nil {
			return err
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Note deleted successfully", nil))
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.GetUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.noteService.List(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Notes fetched successfully", fiber.Map{"notes": res}))
}
