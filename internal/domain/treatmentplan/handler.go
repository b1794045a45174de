package treatmentplan

import (
	"context"
	"fmt"
	"net/http"
	"strings"

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
	clinical := auth.RequireRole(auth.RoleDentist, auth.RoleHygienist)

	g := api.Group("", clinical)
	g.POST("/treatment-plans", h.Create)
	g.GET("/treatment-plans", h.List)
	g.GET("/treatment-plans/:id", h.Get)
	g.PUT("/treatment-plans/:id", h.Update)

	g.POST("/treatment-plans/:id/present", h.transition(h.svc.Present))
	g.POST("/treatment-plans/:id/accept", h.transition(h.svc.Accept))
	g.POST("/treatment-plans/:id/activate", h.transition(h.svc.Activate))
	g.POST("/treatment-plans/:id/complete", h.transition(h.svc.Complete))
	g.POST("/treatment-plans/:id/hold", h.Hold)
	g.POST("/treatment-plans/:id/resume", h.transition(h.svc.Resume))
	g.POST("/treatment-plans/:id/discontinue", h.Discontinue)
	g.POST("/treatment-plans/:id/transfer", h.transition(h.svc.Transfer))

	g.POST("/treatment-plans/:id/phases", h.AddPhase)
	g.GET("/treatment-plans/:id/phases", h.GetPhases)
	g.PUT("/treatment-plans/:id/phases/:phaseId", h.UpdatePhase)
	g.GET("/treatment-plans/:id/progress", h.Progress)

	g.GET("/patients/:patientId/treatment-plans", h.ListByPatient)
}

func transitionStatus(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

// transition adapts the reason-less status moves, which all share a shape.
func (h *Handler) transition(fn func(context.Context, uuid.UUID) (*TreatmentPlan, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
		}
		p, err := fn(c.Request().Context(), id)
		if err != nil {
			return echo.NewHTTPError(transitionStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, p)
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) Hold(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Hold(c.Request().Context(), id, req.Reason)
	if err != nil {
		if strings.Contains(err.Error(), "reason is required") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(transitionStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Discontinue(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req reasonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Discontinue(c.Request().Context(), id, req.Reason)
	if err != nil {
		if strings.Contains(err.Error(), "reason is required") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(transitionStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Create(c echo.Context) error {
	var p TreatmentPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, &p)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment plan not found")
	}
	return c.JSON(http.StatusOK, p)
}

type updateRequest struct {
	Title           string  `json:"title"`
	EstimatedMonths *int    `json:"estimated_months"`
	TotalFeeCents   *int64  `json:"total_fee_cents"`
	Notes           *string `json:"notes"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Update(c.Request().Context(), id, req.Title, req.EstimatedMonths, req.TotalFeeCents, req.Notes)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if strings.Contains(err.Error(), "must not be negative") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"status", "provider", "patient"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	if st, ok := params["status"]; ok && !validStatuses[st] {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid status: %s", st))
	}

	var (
		items []*TreatmentPlan
		total int
		err   error
	)
	if len(params) > 0 {
		items, total, err = h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
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

func (h *Handler) AddPhase(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ph Phase
	if err := c.Bind(&ph); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ph.PlanID = planID
	if err := h.svc.AddPhase(c.Request().Context(), &ph); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, &ph)
}

func (h *Handler) GetPhases(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	phases, err := h.svc.GetPhases(c.Request().Context(), planID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, phases)
}

func (h *Handler) UpdatePhase(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	phaseID, err := uuid.Parse(c.Param("phaseId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid phase id")
	}
	var ph Phase
	if err := c.Bind(&ph); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ph.ID = phaseID
	ph.PlanID = planID
	if err := h.svc.UpdatePhase(c.Request().Context(), &ph); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, &ph)
}

func (h *Handler) Progress(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pr, err := h.svc.Progress(c.Request().Context(), planID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, pr)
}
