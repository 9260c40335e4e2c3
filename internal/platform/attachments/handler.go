package attachments

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// Handler serves stored attachments over HTTP.
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/attachments/:name", h.Download)
}

func (h *Handler) Download(c echo.Context) error {
	name := filepath.Base(c.Param("name"))
	if err := ValidateFileName(name); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rc, err := h.store.Open(c.Request().Context(), name)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "attachment not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to open attachment")
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	return c.Stream(http.StatusOK, contentType, rc)
}
