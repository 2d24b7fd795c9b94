package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Probe 单个依赖组件的探活
type Probe struct {
	Name   string
	IsCore bool
	Check  func(ctx context.Context) error
}

type HealthCheckHandler struct {
	probes  []Probe
	timeout time.Duration
}

func NewHealthCheckHandler(timeout time.Duration, probes ...Probe) *HealthCheckHandler {
	return &HealthCheckHandler{probes: probes, timeout: timeout}
}

type HealthStatus struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	IsCore  bool   `json:"is_core"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck GET /health，核心组件异常时返回 500
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Success:    true,
		Message:    "healthy",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(startupTime).Round(time.Second).String(),
		Components: make([]ComponentStatus, 0, len(h.probes)),
	}

	for _, p := range h.probes {
		status.Components = append(status.Components, h.run(ctx, p))
	}

	if hasCriticalErrors(status.Components) {
		status.Success = false
		status.Message = "unhealthy"
		c.JSON(500, status)
		return
	}

	c.JSON(200, status)
}

func (h *HealthCheckHandler) run(ctx context.Context, p Probe) ComponentStatus {
	checkCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	err := p.Check(checkCtx)
	comp := ComponentStatus{
		Name:    p.Name,
		Status:  "ok",
		IsCore:  p.IsCore,
		Latency: time.Since(start).String(),
	}
	if err != nil {
		hlog.CtxWarnf(ctx, "health probe %s failed: %v", p.Name, err)
		comp.Status = "down"
		comp.Error = err.Error()
	}
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		if comp.IsCore && comp.Status != "ok" {
			return true
		}
	}
	return false
}
