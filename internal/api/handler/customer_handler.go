package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerdesk/backoffice-api/internal/api/metrics"
	"github.com/brokerdesk/backoffice-api/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customer records.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// Create handles POST /v1/customers.
//
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCustomerRequest  true  "Customer details"
// @Success      201   {object}  envelope{data=customerResponse}
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toCustomerInput(req)
	if err != nil {
		return err
	}

	customer, err := h.service.Create(c.Request().Context(), in, p)
	if err != nil {
		return err
	}

	metrics.CustomersCreatedTotal.Inc()
	return respond(c, http.StatusCreated, "Customer created successfully", toCustomerResponse(customer))
}

// List handles GET /v1/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 10, max 100)"
// @Param        search  query     string  false  "Match on name, email or phone"
// @Success      200     {object}  envelope{data=listCustomersResponse}
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	var q listCustomersQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.ListCustomersInput{
		Search: q.Search,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Customers retrieved successfully", listCustomersResponse{
		Customers:  toCustomerResponses(result.Items),
		Pagination: toPaginationResponse(result.Pagination),
	})
}

// Get handles GET /v1/customers/:id.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  envelope{data=customerResponse}
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	customer, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Customer retrieved successfully", toCustomerResponse(customer))
}

// Update handles PATCH /v1/customers/:id.
//
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Customer ID"
// @Param        body  body      updateCustomerRequest  true  "Fields to change"
// @Success      200   {object}  envelope{data=customerResponse}
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/customers/{id} [patch]
func (h *CustomerHandler) Update(c echo.Context) error {
	var req updateCustomerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toUpdateCustomerInput(req)
	if err != nil {
		return err
	}

	customer, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Customer updated successfully", toCustomerResponse(customer))
}

// Deactivate handles DELETE /v1/customers/:id.
//
// @Summary      Deactivate a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  envelope
// @Failure      404  {object}  errorResponse
// @Router       /v1/customers/{id} [delete]
func (h *CustomerHandler) Deactivate(c echo.Context) error {
	if err := h.service.Deactivate(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Customer deactivated successfully", nil)
}

// Stats handles GET /v1/customers/stats.
//
// @Summary      Customer statistics
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope{data=domain.CustomerStats}
// @Failure      401  {object}  errorResponse
// @Router       /v1/customers/stats [get]
func (h *CustomerHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Customer statistics retrieved successfully", stats)
}
