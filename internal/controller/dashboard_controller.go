package controller

import (
	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 获取仪表盘数据
// @Description 本周使用汇总、每日分布和已获得的徽章
// @Tags 仪表盘
// @Produce json
// @Param timeframe query string false "统计周期" Enums(week)
// @Param weekStart query string false "周一日期 YYYY-MM-DD"
// @Success 200 {object} util.Response
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var q service.DashboardQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	dashboard, err := c.DashboardService.GetDashboard(ctx.Request.Context(), userID, q)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 重新计算仪表盘
// @Description 重新聚合最近7天并刷新本周徽章
// @Tags 仪表盘
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/dashboard/recompute [post]
func (c *DashboardController) Recompute(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.Recompute(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}
