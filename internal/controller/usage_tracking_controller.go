package controller

import (
	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UsageTrackingController struct {
	UsageService      *service.UsageService
	SimulationService *service.SimulationService
}

func NewUsageTrackingController(usageService *service.UsageService, simulationService *service.SimulationService) *UsageTrackingController {
	return &UsageTrackingController{UsageService: usageService, SimulationService: simulationService}
}

// @Summary 上报使用事件
// @Description action 取值 app_opened / time_spent / correction
// @Tags 使用记录
// @Accept json
// @Produce json
// @Success 201 {object} util.Response
// @Router /api/usage-tracking [post]
func (c *UsageTrackingController) Track(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req service.TrackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.UsageService.Track(ctx.Request.Context(), userID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// @Summary 生成模拟数据
// @Description 仅用于初始化演示数据，写入最近7天的模拟使用记录
// @Tags 使用记录
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/simulate-usage [post]
func (c *UsageTrackingController) SimulateUsage(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SimulationService.SimulateWeek(ctx.Request.Context(), userID, req.Action)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
