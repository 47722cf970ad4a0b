package handlers

import (
	"time"

	"dailydiet/internal/middleware"
	"dailydiet/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user registration, login and profile.
type UserHandler struct {
	userService *services.UserService
	sessions    *services.SessionService
	validate    *validator.Validate
	cookieTTL   time.Duration
}

// NewUserHandler creates a new UserHandler. cookieTTL is the session cookie max-age.
func NewUserHandler(userService *services.UserService, sessions *services.SessionService, cookieTTL time.Duration) *UserHandler {
	return &UserHandler{
		userService: userService,
		sessions:    sessions,
		validate:    newValidator(),
		cookieTTL:   cookieTTL,
	}
}

// RegisterRoutes registers the user routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	auth := middleware.SessionRequired(h.sessions)

	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleRegister)
	userRoutes.Post("/login", h.HandleLogin)
	userRoutes.Get("/", auth, h.HandleGetProfile)
	userRoutes.Put("/:userId", auth, h.HandleUpdate)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the request body for a profile update.
type UpdateUserRequest struct {
	Name   string `json:"name" validate:"omitempty,min=1"`
	Email  string `json:"email" validate:"omitempty,email"`
	Avatar string `json:"avatar" validate:"omitempty"`
}

// HandleRegister creates a user and binds the session cookie to it.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	presented := c.Cookies(middleware.SessionCookie)
	user, err := h.userService.Register(c.UserContext(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, presented)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "user")
	}

	if user.Session() != presented {
		h.setSessionCookie(c, user.Session())
	}
	return c.Status(fiber.StatusCreated).SendString("userId: " + user.ID)
}

// HandleLogin verifies credentials and issues the session cookie.
func (h *UserHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	token, err := h.userService.Login(c.UserContext(), req.Email, req.Password, c.Cookies(middleware.SessionCookie))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "user")
	}

	h.setSessionCookie(c, token)
	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"sessionId": token,
	})
}

// HandleGetProfile returns the authenticated user.
func (h *UserHandler) HandleGetProfile(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": middleware.CurrentUser(c)})
}

// HandleUpdate changes name, email or avatar of the authenticated user.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	userID, ok, err := uuidParam(c, h.validate, "userId")
	if !ok {
		return err
	}

	var req UpdateUserRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	user, err := h.userService.Update(c.UserContext(), middleware.CurrentUser(c).ID, userID, services.UpdateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest, "user")
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *UserHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieTTL.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
