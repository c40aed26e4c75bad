package clinical

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinrec/clinrec/internal/access"
	"github.com/clinrec/clinrec/internal/platform/auth"
	"github.com/clinrec/clinrec/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// routes maps URL segments to event kinds.
var routes = map[string]access.Resource{
	"consultations":    access.ResourceConsultation,
	"hospitalisations": access.ResourceHospitalisation,
	"emergencies":      access.ResourceEmergency,
	"appointments":     access.ResourceAppointment,
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	for segment, kind := range routes {
		kind := kind
		api.GET("/"+segment, h.list(kind))
		api.GET("/"+segment+"/mine", h.listMine(kind))
		api.GET("/"+segment+"/:id", h.get(kind))
		api.POST("/"+segment, h.create(kind))
		api.PUT("/"+segment+"/:id", h.update(kind))
		api.DELETE("/"+segment+"/:id", h.delete(kind))
	}
	api.POST("/hospitalisations/:id/discharge", h.Discharge)
}

func (h *Handler) list(kind access.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor := auth.ActorFromContext(c.Request().Context())
		page, err := h.svc.List(c.Request().Context(), actor, kind, pagination.FromContext(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

func (h *Handler) listMine(kind access.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor := auth.ActorFromContext(c.Request().Context())
		page, err := h.svc.ListMine(c.Request().Context(), actor, kind, pagination.FromContext(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

func (h *Handler) get(kind access.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		actor := auth.ActorFromContext(c.Request().Context())
		fields, err := h.svc.Get(c.Request().Context(), actor, kind, id)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, fields)
	}
}

func (h *Handler) create(kind access.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		var submitted access.Fields
		if err := c.Bind(&submitted); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		actor := auth.ActorFromContext(c.Request().Context())
		created, err := h.svc.Create(c.Request().Context(), actor, kind, submitted)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func (h *Handler) update(kind access.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		var submitted access.Fields
		if err := c.Bind(&submitted); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		actor := auth.ActorFromContext(c.Request().Context())
		updated, err := h.svc.Update(c.Request().Context(), actor, kind, id, submitted)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func (h *Handler) delete(kind access.Resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		actor := auth.ActorFromContext(c.Request().Context())
		if err := h.svc.Delete(c.Request().Context(), actor, kind, id); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var submitted access.Fields
	if err := c.Bind(&submitted); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.ActorFromContext(c.Request().Context())
	discharged, err := h.svc.Discharge(c.Request().Context(), actor, id, submitted)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, discharged)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, access.ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, access.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, access.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
