package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"registration-system/config"
	"registration-system/models"
	"registration-system/security"
	"registration-system/status"
)

type AuthHandler struct {
	app *pocketbase.PocketBase
	cfg *config.Config
}

func NewAuthHandler(app *pocketbase.PocketBase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{app: app, cfg: cfg}
}

// Login - Exchange email + password for a bearer token
func (h *AuthHandler) Login(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Email == "" || req.Password == "" {
		return apis.NewBadRequestError("Email and password are required", nil)
	}

	user, err := h.app.FindFirstRecordByFilter(
		"users",
		"email = {:email}",
		dbx.Params{"email": req.Email},
	)
	if err != nil {
		return toAPIError(status.ErrInvalidCredentials)
	}

	if !security.CheckPassword(user.GetString("passwordHash"), req.Password) {
		return toAPIError(status.ErrInvalidCredentials)
	}

	token, err := security.GenerateToken(
		h.cfg.JWTSecret, user.Id, user.GetString("email"), user.GetString("role"), h.cfg.TokenExpiry)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"id":    user.Id,
		"email": user.GetString("email"),
		"role":  user.GetString("role"),
		"token": token,
	})
}

// Register - Create an operator account (admin only)
func (h *AuthHandler) Register(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Email == "" || req.Password == "" {
		return apis.NewBadRequestError("Email and password are required", nil)
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleStaff {
		return apis.NewBadRequestError("Unknown role", nil)
	}

	if _, err := h.app.FindFirstRecordByFilter(
		"users",
		"email = {:email}",
		dbx.Params{"email": req.Email},
	); err == nil {
		return toAPIError(status.ErrUserExists)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return toAPIError(err)
	}

	collection, err := h.app.FindCollectionByNameOrId("users")
	if err != nil {
		return toAPIError(err)
	}
	user := core.NewRecord(collection)
	user.Set("email", req.Email)
	user.Set("passwordHash", hash)
	user.Set("role", req.Role)

	if err := h.app.Save(user); err != nil {
		return toAPIError(err)
	}

	token, err := security.GenerateToken(
		h.cfg.JWTSecret, user.Id, req.Email, req.Role, h.cfg.TokenExpiry)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"id":    user.Id,
		"email": req.Email,
		"role":  req.Role,
		"token": token,
	})
}
