package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voicedesk/callcenter-api/internal/core/domain"
	"github.com/voicedesk/callcenter-api/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Username string             `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string             `json:"password" validate:"required,min=8,max=128,passwordstrength"`
	Name     string             `json:"name" validate:"required,min=1,max=100"`
	Email    string             `json:"email" validate:"required,email,max=254"`
	Role     string             `json:"userType" validate:"omitempty,oneof=Admin User"`
	Settings *domain.Settings   `json:"settings"`
	Features *domain.Features   `json:"features"`
	APIKeys  map[string]string  `json:"apiKeys" validate:"omitempty,dive,keys,oneof=vapi_key openai_key elevenlabs_key deepgram_key,endkeys,max=500"`
}

type updateUserRequest struct {
	Name     *string           `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string           `json:"email" validate:"omitempty,email,max=254"`
	Role     *string           `json:"userType" validate:"omitempty,oneof=Admin User"`
	Settings *domain.Settings  `json:"settings"`
	Features *domain.Features  `json:"features"`
	APIKeys  map[string]string `json:"apiKeys" validate:"omitempty,dive,keys,oneof=vapi_key openai_key elevenlabs_key deepgram_key,endkeys,max=500"`
}

type setAPIKeyRequest struct {
	KeyType string `json:"keyType" validate:"required,oneof=vapi_key openai_key elevenlabs_key deepgram_key"`
	APIKey  string `json:"apiKey" validate:"required,min=10,max=500"`
}

type apiKeyResponse struct {
	APIKey string `json:"apiKey"`
}

type setTwoFARequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type twoFAResponse struct {
	Enabled bool `json:"enabled"`
}

// Create registers a new account. This is the public signup route; the
// admin panel uses CreateByAdmin, which runs behind the admin guard.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	return h.create(c)
}

// CreateByAdmin registers a new account from the management panel.
//
// @Summary      Create user (admin)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  domain.User
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /admin/users [post]
func (h *UserHandler) CreateByAdmin(c echo.Context) error {
	return h.create(c)
}

func (h *UserHandler) create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Settings: req.Settings,
		Features: req.Features,
		APIKeys:  req.APIKeys,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

// List returns every active user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one active user by username.
//
// @Summary      Get user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  domain.User
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.userService.Get(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update applies a partial update to a user.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string             true  "Username"
// @Param        body      body      updateUserRequest  true  "Fields to change"
// @Success      200       {object}  domain.User
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Update(c.Request().Context(), c.Param("username"), domain.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Settings: req.Settings,
		Features: req.Features,
		APIKeys:  req.APIKeys,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Delete soft-deletes a user.
//
// @Summary      Delete user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  messageResponse
// @Failure      403       {object}  map[string]string
// @Router       /users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// SetAPIKey stores an external-provider key in one of the named slots.
//
// @Summary      Set API key
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string            true  "Username"
// @Param        body      body      setAPIKeyRequest  true  "Key slot and value"
// @Success      200       {object}  messageResponse
// @Router       /users/{username}/api-key [put]
func (h *UserHandler) SetAPIKey(c echo.Context) error {
	var req setAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.SetAPIKey(c.Request().Context(), c.Param("username"), req.KeyType, req.APIKey); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "API key updated successfully"})
}

// GetAPIKey reads one key slot; an unset slot reads as "".
//
// @Summary      Get API key
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Param        keyType   path      string  true  "Key slot"
// @Success      200       {object}  apiKeyResponse
// @Failure      404       {object}  map[string]string
// @Router       /users/{username}/api-key/{keyType} [get]
func (h *UserHandler) GetAPIKey(c echo.Context) error {
	key, err := h.userService.GetAPIKey(c.Request().Context(), c.Param("username"), c.Param("keyType"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, apiKeyResponse{APIKey: key})
}

// SetTwoFA toggles two-factor auth for a user.
//
// @Summary      Set 2FA status
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string           true  "Username"
// @Param        body      body      setTwoFARequest  true  "Enabled flag"
// @Success      200       {object}  messageResponse
// @Router       /users/{username}/2fa [put]
func (h *UserHandler) SetTwoFA(c echo.Context) error {
	var req setTwoFARequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.SetTwoFA(c.Request().Context(), c.Param("username"), *req.Enabled); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "2FA status updated successfully"})
}

// GetTwoFA reads the 2FA flag.
//
// @Summary      Get 2FA status
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  twoFAResponse
// @Failure      404       {object}  map[string]string
// @Router       /users/{username}/2fa [get]
func (h *UserHandler) GetTwoFA(c echo.Context) error {
	enabled, err := h.userService.GetTwoFA(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, twoFAResponse{Enabled: enabled})
}

// TouchLastLogin stamps last_login for a user.
//
// @Summary      Update last login
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  messageResponse
// @Router       /users/{username}/last-login [put]
func (h *UserHandler) TouchLastLogin(c echo.Context) error {
	if err := h.userService.TouchLastLogin(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Last login updated successfully"})
}
