package handlers

import (
	"io"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"registration-system/models"
	"registration-system/services"
)

type CustomerHandler struct {
	app     *pocketbase.PocketBase
	service *services.CustomerService
}

func NewCustomerHandler(app *pocketbase.PocketBase, service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{app: app, service: service}
}

// GetCustomers - List all non-deleted registrations
func (h *CustomerHandler) GetCustomers(e *core.RequestEvent) error {
	customers, err := h.service.List(e.Request.Context())
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, customers)
}

// GetCustomer - Get a single registration
func (h *CustomerHandler) GetCustomer(e *core.RequestEvent) error {
	customer, err := h.service.Get(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, customer)
}

// CreateCustomer - Register an attendee and issue the ticket (admin)
func (h *CustomerHandler) CreateCustomer(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	in, err := services.ParseCustomerInput(body)
	if err != nil {
		return toAPIError(err)
	}

	result, err := h.service.Register(e.Request.Context(), in)
	if err != nil {
		return toAPIError(err)
	}

	// 201 either way: a delivery failure does not undo the registration,
	// the caller just gets a warning instead of a confirmation.
	return e.JSON(http.StatusCreated, result)
}

// UpdateCustomer - Partial update of a registration (admin)
func (h *CustomerHandler) UpdateCustomer(e *core.RequestEvent) error {
	body, err := io.ReadAll(e.Request.Body)
	if err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	in, err := services.ParseCustomerInput(body)
	if err != nil {
		return toAPIError(err)
	}

	customer, err := h.service.Update(e.Request.Context(), e.Request.PathValue("id"), in)
	if err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, customer)
}

// DeleteCustomer - Soft delete a registration (admin)
func (h *CustomerHandler) DeleteCustomer(e *core.RequestEvent) error {
	if err := h.service.SoftDelete(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return toAPIError(err)
	}
	return e.JSON(http.StatusOK, map[string]string{"message": "Customer deleted"})
}

// VerifyCustomer - One-time ticket verification at the door
func (h *CustomerHandler) VerifyCustomer(e *core.RequestEvent) error {
	var req struct {
		CustomerID string `json:"customerId"`
		EventID    string `json:"eventId"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.CustomerID == "" || req.EventID == "" {
		return apis.NewBadRequestError("customerId and eventId are required", nil)
	}

	summary, err := h.service.Verify(e.Request.Context(), req.CustomerID, req.EventID)
	if err != nil {
		return toAPIError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Customer verified",
		"customer": summary,
	})
}

// GetEventFormFields - Public schema lookup for the registration form
func (h *CustomerHandler) GetEventFormFields(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	event := models.EventFromRecord(record)
	return e.JSON(http.StatusOK, event.CustomFields)
}

// ResendTickets - Bulk re-dispatch of ticket notifications (admin)
func (h *CustomerHandler) ResendTickets(e *core.RequestEvent) error {
	var req struct {
		CustomerIDs []string `json:"customerIds"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if len(req.CustomerIDs) == 0 {
		return apis.NewBadRequestError("customerIds must not be empty", nil)
	}

	results := h.service.ResendTickets(e.Request.Context(), req.CustomerIDs)

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"results": results,
		"sent":    sent,
		"failed":  len(results) - sent,
	})
}
