package controller

import (
	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AppSettingsController struct {
	AppLimitService *service.AppLimitService
}

func NewAppSettingsController(appLimitService *service.AppLimitService) *AppSettingsController {
	return &AppSettingsController{AppLimitService: appLimitService}
}

type saveAppSettingsRequest struct {
	AppSettings map[string]service.AppSettingInput `json:"appSettings" binding:"required"`
}

// @Summary 获取应用限制
// @Tags 应用限制
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/app-settings [get]
func (c *AppSettingsController) GetAppSettings(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	settings, err := c.AppLimitService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, settings)
}

// @Summary 保存应用限制
// @Description 整体保存，任一应用校验失败则全部不写入
// @Tags 应用限制
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/app-settings [post]
func (c *AppSettingsController) SaveAppSettings(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req saveAppSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AppLimitService.Save(ctx.Request.Context(), userID, req.AppSettings); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
