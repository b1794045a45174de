package scheduling

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dentio/dentio/internal/platform/auth"
	"github.com/dentio/dentio/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	desk := auth.RequireRole(auth.RoleFrontDesk, auth.RoleAssistant, auth.RoleHygienist, auth.RoleDentist)

	g := api.Group("", desk)
	g.POST("/shifts", h.CreateShift)
	g.GET("/shifts", h.ListShifts)

	g.POST("/appointments", h.Book)
	g.GET("/appointments/:id", h.Get)
	g.PUT("/appointments/:id/reschedule", h.Reschedule)
	g.POST("/appointments/:id/cancel", h.statusMove(h.svc.Cancel))
	g.POST("/appointments/:id/check-in", h.statusMove(h.svc.CheckIn))
	g.POST("/appointments/:id/complete", h.statusMove(h.svc.Complete))
	g.POST("/appointments/:id/no-show", h.statusMove(h.svc.NoShow))

	g.GET("/providers/:providerId/schedule", h.DaySchedule)
	g.GET("/patients/:patientId/appointments", h.ListByPatient)
}

func errStatus(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

func (h *Handler) CreateShift(c echo.Context) error {
	var sh Shift
	if err := c.Bind(&sh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateShift(c.Request().Context(), &sh); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, &sh)
}

func (h *Handler) ListShifts(c echo.Context) error {
	from, err := time.Parse(time.RFC3339, c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from, want RFC3339")
	}
	to, err := time.Parse(time.RFC3339, c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to, want RFC3339")
	}
	var providerID *uuid.UUID
	if v := c.QueryParam("provider"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
		}
		providerID = &id
	}
	shifts, err := h.svc.ListShifts(c.Request().Context(), providerID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, shifts)
}

func (h *Handler) Book(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Book(c.Request().Context(), &a); err != nil {
		if strings.Contains(err.Error(), "conflicts") || strings.Contains(err.Error(), "outside") {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, &a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}

type rescheduleRequest struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Chair   string    `json:"chair"`
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Reschedule(c.Request().Context(), id, req.StartAt, req.EndAt, req.Chair)
	if err != nil {
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "after start") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) statusMove(fn func(ctx context.Context, id uuid.UUID) (*Appointment, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		a, err := fn(c.Request().Context(), id)
		if err != nil {
			return echo.NewHTTPError(errStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, a)
	}
}

func (h *Handler) DaySchedule(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	day := time.Now().UTC()
	if v := c.QueryParam("date"); v != "" {
		day, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
	}
	sched, err := h.svc.DaySchedule(c.Request().Context(), providerID, day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sched)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
