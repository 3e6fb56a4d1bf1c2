package controller

import (
	"strconv"

	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifier *service.ThresholdNotifier
}

func NewNotificationController(notifier *service.ThresholdNotifier) *NotificationController {
	return &NotificationController{Notifier: notifier}
}

// @Summary 获取超限记录
// @Tags 提醒
// @Produce json
// @Param date query string false "日期 YYYY-MM-DD，为空返回全部"
// @Success 200 {object} util.Response
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.Notifier.List(ctx.Request.Context(), userID, ctx.Query("date"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, items)
}

// @Summary 确认超限记录
// @Tags 提醒
// @Produce json
// @Param id path int true "记录ID"
// @Success 200 {object} util.Response
// @Router /api/notifications/{id}/ack [post]
func (c *NotificationController) Acknowledge(ctx *gin.Context) {
	userID := util.GetUserIDFromContext(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	item, err := c.Notifier.Acknowledge(ctx.Request.Context(), userID, uint(id))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, item)
}
