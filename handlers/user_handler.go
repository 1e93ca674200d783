package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"registration-system/models"
)

type UserHandler struct {
	app *pocketbase.PocketBase
}

func NewUserHandler(app *pocketbase.PocketBase) *UserHandler {
	return &UserHandler{app: app}
}

// GetUsers - List operator accounts (admin)
func (h *UserHandler) GetUsers(e *core.RequestEvent) error {
	var records []*core.Record
	if err := h.app.RecordQuery("users").OrderBy("created DESC").All(&records); err != nil {
		return toAPIError(err)
	}

	users := make([]models.User, 0, len(records))
	for _, record := range records {
		users = append(users, models.UserFromRecord(record))
	}
	return e.JSON(http.StatusOK, users)
}

// GetUser - Get a single operator account (admin)
func (h *UserHandler) GetUser(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("users", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("User not found", err)
	}
	return e.JSON(http.StatusOK, models.UserFromRecord(record))
}

// UpdateUser - Update email or role (admin)
func (h *UserHandler) UpdateUser(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("users", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("User not found", err)
	}

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.Email != "" {
		record.Set("email", req.Email)
	}
	if req.Role != "" {
		if req.Role != models.RoleAdmin && req.Role != models.RoleStaff {
			return apis.NewBadRequestError("Unknown role", nil)
		}
		record.Set("role", req.Role)
	}

	if err := h.app.Save(record); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, models.UserFromRecord(record))
}

// DeleteUser - Remove an operator account (admin)
func (h *UserHandler) DeleteUser(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("users", e.Request.PathValue("id"))
	if err != nil {
		return apis.NewNotFoundError("User not found", err)
	}

	if err := h.app.Delete(record); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "User deleted"})
}
