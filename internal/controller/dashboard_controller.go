package controller

import (
	"gym-statistics/internal/dto"
	"gym-statistics/internal/pkg/serverutils"
	"gym-statistics/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDashboardController interface {
	RegisterRoutes(r fiber.Router)
	Owners(ctx *fiber.Ctx) error
	MuscleGroups(ctx *fiber.Ctx) error
	Exercises(ctx *fiber.Ctx) error
	Series(ctx *fiber.Ctx) error
	View(ctx *fiber.Ctx) error
	Refresh(ctx *fiber.Ctx) error
}

type dashboardController struct {
	service service.IDashboardService
}

func NewDashboardController(service service.IDashboardService) IDashboardController {
	return &dashboardController{service: service}
}

func (c *dashboardController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/dashboard/v1")
	h.Get("/owners", c.Owners)
	h.Get("/muscle-groups", c.MuscleGroups)
	h.Get("/exercises", c.Exercises)
	h.Get("/series", c.Series)
	h.Get("/view", c.View)
	h.Post("/refresh", c.Refresh)
}

func parseSelection(ctx *fiber.Ctx) (dto.DashboardSelectionQuery, error) {
	var q dto.DashboardSelectionQuery
	if err := ctx.QueryParser(&q); err != nil {
		return q, fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	return q, nil
}

func (c *dashboardController) Owners(ctx *fiber.Ctx) error {
	res := c.service.Owners(ctx.UserContext())
	return ctx.JSON(serverutils.SuccessResponse("Success get owners", res))
}

func (c *dashboardController) MuscleGroups(ctx *fiber.Ctx) error {
	q, err := parseSelection(ctx)
	if err != nil {
		return err
	}

	res := c.service.MuscleGroups(ctx.UserContext(), q.Owner)
	return ctx.JSON(serverutils.SuccessResponse("Success get muscle groups", res))
}

func (c *dashboardController) Exercises(ctx *fiber.Ctx) error {
	q, err := parseSelection(ctx)
	if err != nil {
		return err
	}

	res := c.service.Exercises(ctx.UserContext(), q.Owner, q.MuscleGroup)
	return ctx.JSON(serverutils.SuccessResponse("Success get exercises", res))
}

// Series answers for the exact selection, without falling back to defaults.
func (c *dashboardController) Series(ctx *fiber.Ctx) error {
	q, err := parseSelection(ctx)
	if err != nil {
		return err
	}

	points := c.service.Series(ctx.UserContext(), q.ToEntity())
	return ctx.JSON(serverutils.SuccessResponse("Success get series", dto.NewSeriesResponse(points)))
}

func (c *dashboardController) View(ctx *fiber.Ctx) error {
	q, err := parseSelection(ctx)
	if err != nil {
		return err
	}

	view := c.service.View(ctx.UserContext(), q.ToEntity())
	return ctx.JSON(serverutils.SuccessResponse("Success get view", dto.NewDashboardViewResponse(view)))
}

func (c *dashboardController) Refresh(ctx *fiber.Ctx) error {
	reloaded, err := c.service.Refresh(ctx.UserContext(), service.TriggerManual)
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Workouts file is unavailable")
	}

	res := &dto.RefreshResponse{Reloaded: reloaded, Version: c.service.Version()}
	return ctx.JSON(serverutils.SuccessResponse("Success refresh", res))
}
