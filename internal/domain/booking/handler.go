package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/attachments"
	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(auth.RoleReceptionist, auth.RoleDoctor))
	read.GET("/appointments", h.List)
	read.GET("/appointments/today", h.Today)
	read.GET("/appointments/:id", h.Get)
	read.GET("/calendar", h.Calendar)
	read.GET("/export", h.Export)

	// Patients can book for themselves; everything that reshuffles the book
	// stays with the front desk.
	api.POST("/appointments", h.Book, auth.RequireRole(auth.RolePatient, auth.RoleReceptionist))

	desk := api.Group("", auth.RequireRole(auth.RoleReceptionist))
	desk.PUT("/appointments/:id/reschedule", h.Reschedule)
	desk.PUT("/appointments/:id/cancel", h.Cancel)
	desk.POST("/appointments/:id/reports", h.UploadReport)
	desk.DELETE("/appointments/:id", h.Delete)
}

func apptID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	return id, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrTransition), errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, attachments.ErrInvalidExtension),
		errors.Is(err, attachments.ErrFileTooLarge),
		errors.Is(err, attachments.ErrMissingFileName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

type bookRequest struct {
	Name   string `json:"name"`
	Age    string `json:"age"`
	Gender string `json:"gender"`
	Height string `json:"height"`
	Weight string `json:"weight"`
	Mobile string `json:"mobile"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Doctor string `json:"doctor"`
	Notes  string `json:"notes"`
}

func (h *Handler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec := &AppointmentRecord{
		Name:   req.Name,
		Age:    req.Age,
		Gender: req.Gender,
		Height: req.Height,
		Weight: req.Weight,
		Mobile: req.Mobile,
		Date:   req.Date,
		Time:   req.Time,
		Doctor: req.Doctor,
		Notes:  req.Notes,
	}
	result, err := h.svc.Book(c.Request().Context(), rec)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	params := SearchParams{
		Doctor: c.QueryParam("doctor"),
		Date:   c.QueryParam("date"),
		Status: Status(c.QueryParam("status")),
		Mobile: c.QueryParam("mobile"),
		Name:   c.QueryParam("name"),
	}
	if params.Status != "" && !ValidStatus(params.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
	}

	items, total, err := h.svc.Search(c.Request().Context(), params, p.Limit, p.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p.Limit, p.Offset))
}

func (h *Handler) Today(c echo.Context) error {
	items, err := h.svc.Today(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := apptID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Calendar(c echo.Context) error {
	events, err := h.svc.Calendar(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, events)
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type rescheduleResponse struct {
	Record   *AppointmentRecord `json:"record"`
	Warnings []string           `json:"warnings,omitempty"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := apptID(c)
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, warnings, err := h.svc.Reschedule(c.Request().Context(), id, req.Date, req.Time)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rescheduleResponse{Record: rec, Warnings: warnings})
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := apptID(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := apptID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UploadReport(c echo.Context) error {
	id, err := apptID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	rec, err := h.svc.AttachReport(c.Request().Context(), id, fh.Filename, src)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, rec)
}
