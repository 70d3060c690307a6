package controller

import (
	"gym-statistics/internal/dto"
	"gym-statistics/internal/pkg/serverutils"
	"gym-statistics/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDialogController interface {
	RegisterRoutes(r fiber.Router)
	HandleMessage(ctx *fiber.Ctx) error
}

type dialogController struct {
	service service.IDialogService
}

func NewDialogController(service service.IDialogService) IDialogController {
	return &dialogController{service: service}
}

func (c *dialogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dialog/v1")
	h.Post("/messages", c.HandleMessage)
}

func (c *dialogController) HandleMessage(ctx *fiber.Ctx) error {
	var req dto.DialogMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reply, err := c.service.Handle(ctx.UserContext(), req.Handle, req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle message", dto.NewDialogMessageResponse(reply)))
}
