package handlers

import (
	"fmt"

	"dailydiet/internal/apperrors"
	"dailydiet/internal/middleware"
	"dailydiet/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// DietHandler handles HTTP requests for diet entries and their metrics.
type DietHandler struct {
	dietService    *services.DietService
	metricsService *services.MetricsService
	sessions       *services.SessionService
	validate       *validator.Validate
}

// NewDietHandler creates a new DietHandler.
func NewDietHandler(dietService *services.DietService, metricsService *services.MetricsService, sessions *services.SessionService) *DietHandler {
	return &DietHandler{
		dietService:    dietService,
		metricsService: metricsService,
		sessions:       sessions,
		validate:       newValidator(),
	}
}

// RegisterRoutes registers the diet routes; all of them require a session.
func (h *DietHandler) RegisterRoutes(router fiber.Router) {
	dietRoutes := router.Group("/diet", middleware.SessionRequired(h.sessions))
	dietRoutes.Post("/", h.HandleCreate)
	dietRoutes.Get("/", h.HandleList)
	// Registered before /:dietId so "metrics" is not taken for an id.
	dietRoutes.Get("/metrics", h.HandleMetrics)
	dietRoutes.Get("/:dietId", h.HandleGet)
	dietRoutes.Put("/:dietId", h.HandleUpdate)
	dietRoutes.Delete("/:dietId", h.HandleDelete)
}

// DietRequest represents the body of create and update requests.
type DietRequest struct {
	Name        string        `json:"name" validate:"required"`
	Description string        `json:"description" validate:"required"`
	IsOnDiet    *bool         `json:"isOnDiet" validate:"required"`
	Date        CoercibleTime `json:"date" validate:"required,coercibletime"`
}

func (h *DietHandler) parseDiet(c *fiber.Ctx) (services.DietInput, bool, error) {
	var req DietRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return services.DietInput{}, false, err
	}
	// Already checked by the coercibletime tag.
	date, _ := req.Date.Time()
	return services.DietInput{
		Name:        req.Name,
		Description: req.Description,
		IsOnDiet:    *req.IsOnDiet,
		Date:        date,
	}, true, nil
}

// HandleCreate records a meal for the authenticated user.
func (h *DietHandler) HandleCreate(c *fiber.Ctx) error {
	in, ok, err := h.parseDiet(c)
	if !ok {
		return err
	}

	diet, err := h.dietService.CreateDiet(c.UserContext(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "diet")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"diet": diet})
}

// HandleUpdate overwrites a meal owned by the authenticated user.
func (h *DietHandler) HandleUpdate(c *fiber.Ctx) error {
	dietID, ok, err := uuidParam(c, h.validate, "dietId")
	if !ok {
		return err
	}
	in, ok, err := h.parseDiet(c)
	if !ok {
		return err
	}

	diet, err := h.dietService.UpdateDiet(c.UserContext(), middleware.CurrentUser(c).ID, dietID, in)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "diet")
	}
	return c.JSON(fiber.Map{"diet": diet})
}

// HandleList returns every meal of the authenticated user.
func (h *DietHandler) HandleList(c *fiber.Ctx) error {
	diets, err := h.dietService.ListDiets(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "diet")
	}
	return c.JSON(fiber.Map{"diet": diets})
}

// HandleGet returns one meal owned by the authenticated user.
func (h *DietHandler) HandleGet(c *fiber.Ctx) error {
	dietID, ok, err := uuidParam(c, h.validate, "dietId")
	if !ok {
		return err
	}

	diet, err := h.dietService.GetDiet(c.UserContext(), middleware.CurrentUser(c).ID, dietID)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "diet")
	}
	return c.JSON(fiber.Map{"diet": diet})
}

// HandleDelete removes a meal owned by the authenticated user.
// A malformed id cannot name an entry, so it answers 404 like a missing one.
func (h *DietHandler) HandleDelete(c *fiber.Ctx) error {
	dietID := c.Params("dietId")
	if err := h.validate.Var(dietID, "required,uuid"); err != nil {
		return respondError(c, fmt.Errorf("diet id %q: %w", dietID, apperrors.ErrNotFound), fiber.StatusNotFound, "diet")
	}

	if err := h.dietService.DeleteDiet(c.UserContext(), middleware.CurrentUser(c).ID, dietID); err != nil {
		return respondError(c, err, fiber.StatusNotFound, "diet")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleMetrics returns the authenticated user's diet statistics.
func (h *DietHandler) HandleMetrics(c *fiber.Ctx) error {
	metrics, err := h.metricsService.Summarize(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "diet")
	}
	return c.JSON(metrics)
}
