package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/domain"
	"github.com/simaogato/planwise-backend/internal/usecase/plan"
)

// PlanService is the plan lifecycle the handler exposes
type PlanService interface {
	CreatePlan(ctx context.Context, input plan.CreatePlanInput) (*domain.InvestmentPlan, error)
	ListPlans(ctx context.Context, ownerID string) ([]*domain.InvestmentPlan, error)
	GetPlan(ctx context.Context, planID uuid.UUID, ownerID string) (*domain.InvestmentPlan, error)
	GetSharedPlan(ctx context.Context, planID uuid.UUID) (*domain.InvestmentPlan, error)
	DeletePlan(ctx context.Context, planID uuid.UUID, ownerID string) error
	ToggleShare(ctx context.Context, planID uuid.UUID, ownerID string) (*domain.InvestmentPlan, error)
}

// PlanHandler serves the /api/investment routes.
// Every route except the shared-plan view runs behind Auth.
type PlanHandler struct {
	Service PlanService
	Auth    gin.HandlerFunc
	Logger  *zap.Logger
}

func (h *PlanHandler) Register(r *gin.Engine) {
	group := r.Group("/api/investment")
	group.GET("/shared/:planId", h.getShared)

	owned := group.Group("")
	if h.Auth != nil {
		owned.Use(h.Auth)
	}
	owned.POST("/create", h.create)
	owned.GET("/plans", h.list)
	owned.GET("/plans/:planId", h.get)
	owned.DELETE("/plans/:planId", h.delete)
	owned.PATCH("/toggle-share/:planId", h.toggleShare)
}

type createPlanRequest struct {
	PlanName      string          `json:"planName"`
	MonthlyIncome json.RawMessage `json:"monthlyIncome"`
	RiskLevel     string          `json:"riskLevel"`
}

func (h *PlanHandler) create(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}

	created, err := h.Service.CreatePlan(c.Request.Context(), plan.CreatePlanInput{
		OwnerID:       ownerID(c),
		PlanName:      req.PlanName,
		MonthlyIncome: parseIncome(req.MonthlyIncome),
		RiskLevel:     req.RiskLevel,
	})
	if err != nil {
		writeError(c, h.logger(), err)
		return
	}
	Respond(c, http.StatusCreated, newPlanResponse(created), nil)
}

func (h *PlanHandler) list(c *gin.Context) {
	plans, err := h.Service.ListPlans(c.Request.Context(), ownerID(c))
	if err != nil {
		writeError(c, h.logger(), err)
		return
	}
	Ok(c, newPlanListResponse(plans), map[string]any{"count": len(plans)})
}

func (h *PlanHandler) get(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	p, err := h.Service.GetPlan(c.Request.Context(), id, ownerID(c))
	if err != nil {
		writeError(c, h.logger(), err)
		return
	}
	Ok(c, newPlanResponse(p), nil)
}

func (h *PlanHandler) getShared(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	p, err := h.Service.GetSharedPlan(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger(), err)
		return
	}
	Ok(c, newSharedPlanResponse(p), nil)
}

func (h *PlanHandler) delete(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	if err := h.Service.DeletePlan(c.Request.Context(), id, ownerID(c)); err != nil {
		writeError(c, h.logger(), err)
		return
	}
	Ok(c, gin.H{"id": id.String(), "deleted": true}, nil)
}

func (h *PlanHandler) toggleShare(c *gin.Context) {
	id, ok := planIDParam(c)
	if !ok {
		return
	}
	p, err := h.Service.ToggleShare(c.Request.Context(), id, ownerID(c))
	if err != nil {
		writeError(c, h.logger(), err)
		return
	}
	Ok(c, newPlanResponse(p), nil)
}

func (h *PlanHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// planIDParam parses :planId. A malformed id cannot name any plan, so it is answered with 404.
func planIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("planId")))
	if err != nil {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return uuid.Nil, false
	}
	return id, true
}

// parseIncome accepts a JSON number or a numeric string.
// Anything else, including a missing field, yields NaN so validation reports it.
func parseIncome(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return math.NaN()
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return n
}
