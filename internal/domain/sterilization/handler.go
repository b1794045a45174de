package sterilization

import (
	"net/http"
	"strconv"
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
	sterile := auth.RequireRole(auth.RoleSterileTech, auth.RoleAssistant, auth.RoleHygienist, auth.RoleDentist)

	g := api.Group("/sterilization", sterile)
	g.POST("/cycles", h.StartCycle)
	g.GET("/cycles", h.ListCycles)
	g.GET("/cycles/:id", h.GetCycle)
	g.POST("/cycles/:id/complete", h.CompleteCycle)
	g.POST("/cycles/:id/abort", h.AbortCycle)
	g.POST("/cycles/:id/packages", h.CreatePackages)
	g.GET("/cycles/:id/packages", h.ListPackages)
	g.POST("/cycles/:id/bi", h.RecordBI)
	g.GET("/cycles/:id/bi", h.ListBI)
	g.POST("/cycles/:id/release", h.ReleaseQuarantine)

	g.GET("/packages/:id", h.GetPackage)
	g.POST("/packages/:id/dispense", h.Dispense)
	g.POST("/packages/:id/recall", h.Recall)
	g.GET("/packages/:id/label", h.IssueLabel)
	g.GET("/packages/:id/label.png", h.LabelPNG)

	g.GET("/compliance/daily", h.DailyCompliance)
}

func errStatus(err error) int {
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

func (h *Handler) StartCycle(c echo.Context) error {
	var cy Cycle
	if err := c.Bind(&cy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.StartCycle(c.Request().Context(), &cy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, &cy)
}

func (h *Handler) GetCycle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cy, err := h.svc.GetCycle(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "cycle not found")
	}
	return c.JSON(http.StatusOK, cy)
}

func (h *Handler) ListCycles(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"autoclave", "status", "from", "to"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.SearchCycles(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type completeRequest struct {
	MechanicalPass bool `json:"mechanical_pass"`
	ChemicalPass   bool `json:"chemical_pass"`
}

func (h *Handler) CompleteCycle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cy, err := h.svc.CompleteCycle(c.Request().Context(), id, req.MechanicalPass, req.ChemicalPass)
	if err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cy)
}

func (h *Handler) AbortCycle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cy, err := h.svc.AbortCycle(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, cy)
}

type packagesRequest struct {
	Packages []PackageSpec `json:"packages"`
}

func (h *Handler) CreatePackages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req packagesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pkgs, err := h.svc.CreatePackages(c.Request().Context(), id, req.Packages)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "positive") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return c.JSON(http.StatusCreated, pkgs)
}

func (h *Handler) ListPackages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pkgs, err := h.svc.ListPackagesByCycle(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pkgs)
}

type biRequest struct {
	Result        string    `json:"result"`
	IncubatorSlot string    `json:"incubator_slot"`
	TechnicianID  uuid.UUID `json:"technician_id"`
}

func (h *Handler) RecordBI(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req biRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bi, err := h.svc.RecordBIResult(c.Request().Context(), id, req.Result, req.IncubatorSlot, req.TechnicianID)
	if err != nil {
		if strings.Contains(err.Error(), "invalid BI result") {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, bi)
}

func (h *Handler) ListBI(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	results, err := h.svc.ListBIResults(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) ReleaseQuarantine(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.ReleaseQuarantine(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "released"})
}

func (h *Handler) GetPackage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetPackage(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "package not found")
	}
	return c.JSON(http.StatusOK, p)
}

type dispenseRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req dispenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	p, err := h.svc.Dispense(c.Request().Context(), id, req.PatientID)
	if err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Recall(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Recall(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) IssueLabel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	l, err := h.svc.IssueLabel(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) LabelPNG(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dpi := 0
	if v := c.QueryParam("dpi"); v != "" {
		dpi, err = strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dpi")
		}
	}
	png, err := h.svc.LabelPNG(c.Request().Context(), id, dpi)
	if err != nil {
		return echo.NewHTTPError(errStatus(err), err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *Handler) DailyCompliance(c echo.Context) error {
	day := time.Now().UTC()
	if v := c.QueryParam("date"); v != "" {
		var err error
		day, err = time.Parse("2006-01-02", v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
	}
	sum, err := h.svc.ComplianceSummary(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}
