package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/herozvz07-ctrl/guilder/internal/dto"
	"github.com/herozvz07-ctrl/guilder/internal/services"
)

// AdminHandler is the operator REST surface: application listing, roster
// inspection and a manual reconciliation trigger.
type AdminHandler struct {
	reviews *services.ReviewService
	roster  *services.RosterService
}

func NewAdminHandler(reviews *services.ReviewService, roster *services.RosterService) *AdminHandler {
	return &AdminHandler{reviews: reviews, roster: roster}
}

func (h *AdminHandler) ListApplications(c *fiber.Ctx) error {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	apps, total, err := h.reviews.ListApplications(status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list applications",
		})
	}

	return c.JSON(dto.ApplicationListResponse{
		Applications: apps,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	})
}

func (h *AdminHandler) GetRoster(c *fiber.Ctx) error {
	snapshot, err := h.roster.Snapshot()
	if errors.Is(err, services.ErrNoSnapshot) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "No roster snapshot yet",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load roster",
		})
	}
	return c.JSON(snapshot)
}

func (h *AdminHandler) TriggerReconcile(c *fiber.Ctx) error {
	result, err := h.roster.ReconcileCurrent(c.Context())
	switch {
	case errors.Is(err, services.ErrNoSourceURL):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "No roster source configured",
		})
	case errors.Is(err, services.ErrFetchFailed):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Reconciliation failed",
		})
	}
	return c.JSON(result)
}

func (h *AdminHandler) ListInactive(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "14"))
	if days <= 0 {
		days = 14
	}
	stale, err := h.roster.CheckInactive(c.Context(), days)
	if errors.Is(err, services.ErrNoSnapshot) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "No roster snapshot yet",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to check inactivity",
		})
	}
	return c.JSON(fiber.Map{"days": days, "inactive": stale})
}
