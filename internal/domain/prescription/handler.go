package prescription

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/booking"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleDoctor))
	g.POST("/appointments/:id/prescription", h.Issue)
}

type issueRequest struct {
	Diagnosis      string         `json:"diagnosis"`
	Investigations string         `json:"investigations"`
	Medicines      []MedicineLine `json:"medicines"`
	Advice         string         `json:"advice"`
	FollowUpDate   string         `json:"follow_up_date"`
}

type issueResponse struct {
	Record *booking.AppointmentRecord `json:"record"`
	File   string                     `json:"file"`
}

func (h *Handler) Issue(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}

	var req issueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p := &Prescription{
		Diagnosis:      req.Diagnosis,
		Investigations: req.Investigations,
		Medicines:      req.Medicines,
		Advice:         req.Advice,
		FollowUpDate:   req.FollowUpDate,
	}
	rec, file, err := h.svc.Issue(c.Request().Context(), id, p)
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, booking.ErrTransition), errors.Is(err, booking.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue prescription")
	}
	return c.JSON(http.StatusOK, issueResponse{Record: rec, File: file})
}
