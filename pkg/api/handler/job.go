package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/job-processing/pkg/api/dto"
	"github.com/LENAX/job-processing/pkg/core/engine"
)

// JobHandler Job定义目录API处理器
type JobHandler struct {
	engine *engine.Engine
	orders *OrderHandler
}

// NewJobHandler 创建JobHandler
func NewJobHandler(eng *engine.Engine, orders *OrderHandler) *JobHandler {
	return &JobHandler{engine: eng, orders: orders}
}

// List 分页列出Job定义
// GET /api/v1/jobs?limit=20&offset=0
func (h *JobHandler) List(c *gin.Context) {
	var req dto.ListQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	limit := req.GetDefaultLimit()

	defs, total, err := h.engine.ListJobs(c.Request.Context(), limit, req.Offset)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.JobSummary, 0, len(defs))
	for _, def := range defs {
		items = append(items, dto.NewJobSummary(def))
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.JobSummary]{
		Total:   total,
		Items:   items,
		HasMore: req.Offset+len(items) < total,
	}))
}

// Upsert 保存Job定义（循环依赖等排序错误返回422）
// POST /api/v1/jobs
func (h *JobHandler) Upsert(c *gin.Context) {
	var req dto.UpsertJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	saved, err := h.engine.SaveJob(c.Request.Context(), req.Definition())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewJobDetail(saved)))
}

// Get 获取Job定义详情
// GET /api/v1/jobs/:name
func (h *JobHandler) Get(c *gin.Context) {
	def, err := h.engine.GetJob(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewJobDetail(def)))
}

// Delete 删除Job定义
// DELETE /api/v1/jobs/:name
func (h *JobHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.engine.DeleteJob(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"name":    name,
		"message": "Job definition deleted",
	}))
}

// OrderedTasks 排序已保存的Job定义
// GET|POST /api/v1/jobs/:name/orderedTasks?unknown=ignore|reject&format=json|script
func (h *JobHandler) OrderedTasks(c *gin.Context) {
	policy, err := parsePolicy(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	name := c.Param("name")
	ordered, err := h.engine.OrderStoredJob(c.Request.Context(), name, policy)
	if err != nil {
		respondError(c, err)
		return
	}
	h.orders.respondOrdered(c, name, ordered)
}
