package controller

import (
	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserSettingsController struct {
	SettingsService *service.UserSettingsService
}

func NewUserSettingsController(settingsService *service.UserSettingsService) *UserSettingsController {
	return &UserSettingsController{SettingsService: settingsService}
}

// @Summary 获取用户设置
// @Tags 用户
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/user/settings [get]
func (c *UserSettingsController) GetSettings(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	settings, err := c.SettingsService.Get(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, settings)
}

// @Summary 修改时区
// @Description 时区决定每日统计的起止时间
// @Tags 用户
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/user/settings [put]
func (c *UserSettingsController) UpdateSettings(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		Timezone string `json:"timezone" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	settings, err := c.SettingsService.UpdateTimezone(ctx.Request.Context(), userID, req.Timezone)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, settings)
}
