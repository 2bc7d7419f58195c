package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Checker 依赖组件探活；IsCore 的组件失败时整体状态降级
type Checker struct {
	Name   string
	IsCore bool
	Check  func(ctx context.Context) error
}

type HealthCheckHandler struct {
	checkers []Checker
	timeout  time.Duration
}

func NewHealthCheckHandler(checkers ...Checker) *HealthCheckHandler {
	return &HealthCheckHandler{checkers: checkers, timeout: 2 * time.Second}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"`
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck 核心组件异常时返回 503
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(startupTime).Truncate(time.Second).String(),
		Components: h.checkComponents(ctx),
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *HealthCheckHandler) checkComponents(ctx context.Context) []ComponentStatus {
	out := make([]ComponentStatus, 0, len(h.checkers))
	for _, chk := range h.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		start := time.Now()
		err := chk.Check(checkCtx)
		cancel()

		cs := ComponentStatus{
			Name:    chk.Name,
			Status:  "ok",
			IsCore:  chk.IsCore,
			Latency: time.Since(start),
		}
		if err != nil {
			// 探活接口无需认证，具体错误只写日志
			hlog.CtxWarnf(ctx, "health check %s failed: %v", chk.Name, err)
			cs.Status = "error"
			cs.Error = "unavailable"
		}
		out = append(out, cs)
	}
	return out
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		// 核心组件状态异常或任意组件发生严重错误
		if (comp.IsCore && comp.Status != "ok") || comp.Status == "critical" {
			return true
		}
	}
	return false
}
