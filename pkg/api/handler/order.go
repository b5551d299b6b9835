package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/job-processing/pkg/api/dto"
	"github.com/LENAX/job-processing/pkg/codec"
	"github.com/LENAX/job-processing/pkg/core/engine"
	"github.com/LENAX/job-processing/pkg/core/task"
)

// OrderHandler 排序API处理器
type OrderHandler struct {
	engine    *engine.Engine
	processor engine.Processor
}

// NewOrderHandler 创建OrderHandler
// processor 通常是带调用日志的 engine.WithCallLogging(eng, ...)
func NewOrderHandler(eng *engine.Engine, processor engine.Processor) *OrderHandler {
	if processor == nil {
		processor = eng
	}
	return &OrderHandler{engine: eng, processor: processor}
}

// LegacyOrderedTasks 兼容旧接口
// POST /api/orderedTasks
// Accept 恰好为 text/plain 时返回bash脚本，否则返回 [{name, command}]；排序失败返回500和错误信息文本
func (h *OrderHandler) LegacyOrderedTasks(c *gin.Context) {
	var job task.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		respondBadRequest(c, err)
		return
	}
	policy, err := parsePolicy(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	ordered, err := h.processor.OrderTasks(c.Request.Context(), job, policy)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	if legacyWantsScript(c) {
		c.String(http.StatusOK, h.processor.GenerateScript(c.Request.Context(), ordered))
		return
	}
	c.JSON(http.StatusOK, codec.ToOrderedTasks(ordered))
}

// Order 排序Job
// POST /api/v1/jobs/order?unknown=ignore|reject&format=json|script
// 请求体支持 JSON、YAML（application/yaml）和 HCL（application/hcl）
func (h *OrderHandler) Order(c *gin.Context) {
	job, err := readJob(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	policy, err := parsePolicy(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	ordered, err := h.processor.OrderTasks(c.Request.Context(), job, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondOrdered(c, "", ordered)
}

// Inspect 返回依赖图结构
// POST /api/v1/jobs/inspect
func (h *OrderHandler) Inspect(c *gin.Context) {
	job, err := readJob(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	policy, err := parsePolicy(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	inspection, err := h.engine.Inspect(c.Request.Context(), job, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(inspection))
}

func (h *OrderHandler) respondOrdered(c *gin.Context, jobName string, ordered []task.Task) {
	if wantsScript(c) {
		c.String(http.StatusOK, h.processor.GenerateScript(c.Request.Context(), ordered))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewOrderResponse(jobName, ordered)))
}
