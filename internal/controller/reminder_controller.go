package controller

import (
	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReminderController struct {
	ReminderService *service.ReminderService
}

func NewReminderController(reminderService *service.ReminderService) *ReminderController {
	return &ReminderController{ReminderService: reminderService}
}

// @Summary 获取提醒设置
// @Tags 提醒
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/reminders [get]
func (c *ReminderController) GetReminders(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	reminders, err := c.ReminderService.List(ctx.Request.Context(), userID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, reminders)
}

// @Summary 保存提醒设置
// @Tags 提醒
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/reminders [post]
func (c *ReminderController) SaveReminders(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	var req struct {
		Reminders []service.ReminderInput `json:"reminders" binding:"required,dive"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reminders, err := c.ReminderService.Save(ctx.Request.Context(), userID, req.Reminders)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, reminders)
}
