package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/job-processing/pkg/api/dto"
	"github.com/LENAX/job-processing/pkg/codec"
	"github.com/LENAX/job-processing/pkg/core/dag"
	"github.com/LENAX/job-processing/pkg/core/engine"
	"github.com/LENAX/job-processing/pkg/core/task"
	"github.com/LENAX/job-processing/pkg/storage"
)

// errorStatus 把错误映射为HTTP状态码
func errorStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, dag.ErrCircularDependency),
		errors.Is(err, dag.ErrInvalidTask),
		errors.Is(err, dag.ErrUnresolvedDependency),
		errors.Is(err, engine.ErrJobTooLarge),
		errors.Is(err, engine.ErrInvalidJobName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, codec.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrCatalogDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorDetails 提取排序错误的诊断信息
func errorDetails(err error) map[string]any {
	var (
		cycleErr      *dag.CircularDependencyError
		invalidErr    *dag.InvalidTaskError
		unresolvedErr *dag.UnresolvedDependencyError
	)
	switch {
	case errors.As(err, &cycleErr):
		return map[string]any{
			"cycle":      cycleErr.Cycle,
			"unresolved": cycleErr.Unresolved,
		}
	case errors.As(err, &invalidErr):
		return map[string]any{
			"index":  invalidErr.Index,
			"name":   invalidErr.Name,
			"reason": invalidErr.Reason,
		}
	case errors.As(err, &unresolvedErr):
		return map[string]any{
			"task":    unresolvedErr.Task,
			"missing": unresolvedErr.Missing,
		}
	default:
		return nil
	}
}

// respondError 返回错误信封
func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, dto.NewErrorResponseWithDetails(status, err.Error(), errorDetails(err)))
}

// respondBadRequest 返回400错误信封（请求体过大时返回413）
func respondBadRequest(c *gin.Context, err error) {
	status := http.StatusBadRequest
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, dto.NewErrorResponse(status, err.Error()))
}

// wantsScript 是否返回bash脚本：?format=script 或 Accept: text/plain
func wantsScript(c *gin.Context) bool {
	switch c.Query("format") {
	case "script":
		return true
	case "json":
		return false
	}
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEPlain) == gin.MIMEPlain
}

// legacyWantsScript 旧接口只在 Accept 恰好为 text/plain 时返回脚本（?format=script 同样有效）
func legacyWantsScript(c *gin.Context) bool {
	if c.Query("format") == "script" {
		return true
	}
	return strings.TrimSpace(c.GetHeader("Accept")) == gin.MIMEPlain
}

// parsePolicy 解析 ?unknown=ignore|reject，未指定时返回空（使用引擎默认策略）
func parsePolicy(c *gin.Context) (dag.UnknownDependencyPolicy, error) {
	raw := c.Query("unknown")
	if raw == "" {
		return "", nil
	}
	policy, ok := dag.ParseUnknownDependencyPolicy(raw)
	if !ok {
		return "", fmt.Errorf("invalid unknown policy %q, expected ignore or reject", raw)
	}
	return policy, nil
}

// readJob 按Content-Type解码请求体中的Job（JSON/YAML/HCL）
func readJob(c *gin.Context) (task.Job, error) {
	format, err := codec.FormatFromContentType(c.ContentType())
	if err != nil {
		return task.Job{}, err
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return task.Job{}, fmt.Errorf("read request body: %w", err)
	}
	return codec.DecodeJob(data, format, "request."+string(format))
}

// formatDuration 格式化持续时间
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
