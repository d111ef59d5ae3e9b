package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"bgloop/composite"
	"bgloop/planner"
	"bgloop/services"

	"github.com/gin-gonic/gin"
)

// BackgroundAPI is the service surface the HTTP routes need
type BackgroundAPI interface {
	Directive(ctx context.Context, req services.DirectiveRequest) (*services.DirectiveResponse, error)
	CreatePlan(ctx context.Context, req planner.Request) (*planner.Plan, error)
	GetPlan(ctx context.Context, id string) (*planner.Plan, error)
	PreviewFrame(ctx context.Context, id string, frame int, dir string) (string, error)
	Backgrounds(ctx context.Context) ([]string, error)
}

// RegisterBackgroundRoutes registers background layer endpoints.
func RegisterBackgroundRoutes(r *gin.Engine, svc BackgroundAPI) {
	h := &backgroundController{svc: svc}

	g := r.Group("/api/background")
	g.GET("/assets", h.handleListAssets)
	g.POST("/directive", h.handleDirective)
	g.POST("/plans", h.handleCreatePlan)
	g.GET("/plans/:uuid", h.handleGetPlan)
	g.GET("/plans/:uuid/frames/:frame", h.handlePreviewFrame)
}

type backgroundController struct {
	svc BackgroundAPI
}

// handleListAssets lists the available background clips
func (h *backgroundController) handleListAssets(c *gin.Context) {
	names, err := h.svc.Backgrounds(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list backgrounds: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"assets": names, "count": len(names)})
}

// handleDirective evaluates the layer for a single frame
func (h *backgroundController) handleDirective(c *gin.Context) {
	var req services.DirectiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.Directive(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleCreatePlan plans and stores a whole composition.
// The response omits per-frame samples.
func (h *backgroundController) handleCreatePlan(c *gin.Context) {
	var req planner.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.svc.CreatePlan(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "failed to create plan: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, plan.Summary())
}

// handleGetPlan returns a stored plan; ?samples=true includes every frame
func (h *backgroundController) handleGetPlan(c *gin.Context) {
	plan, err := h.svc.GetPlan(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if withSamples, _ := strconv.ParseBool(c.Query("samples")); withSamples {
		c.JSON(http.StatusOK, plan)
		return
	}
	c.JSON(http.StatusOK, plan.Summary())
}

// handlePreviewFrame renders the background still of one frame as PNG
func (h *backgroundController) handlePreviewFrame(c *gin.Context) {
	frame, err := strconv.Atoi(c.Param("frame"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frame must be an integer"})
		return
	}

	path, err := h.svc.PreviewFrame(c.Request.Context(), c.Param("uuid"), frame, os.TempDir())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": "failed to render frame: " + err.Error()})
		return
	}
	defer os.Remove(path)

	c.File(path)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, planner.ErrInvalidRequest), errors.Is(err, composite.ErrInvalidTiming):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
