package bridge

import (
	"net/http"
	"strconv"

	"giteeup/internal/settings"
	"giteeup/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetSettings(c *gin.Context) {
	cfg, err := h.svc.Settings.Load(c)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "读取配置失败")
		return
	}
	utils.Success(c, cfg)
}

// UpdateSettings 设置页每次保存都提交完整的配置对象，整存整取
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req settings.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusUnprocessableEntity, "invalid settings")
		return
	}

	if err := h.svc.Settings.Save(c, req); err != nil {
		utils.Error(c, http.StatusInternalServerError, "保存配置失败")
		return
	}
	utils.Success(c, req)
}

func (h *Handler) ListAttachments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, err := h.svc.History.Recent(c, limit)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "查询上传历史失败")
		return
	}
	utils.Success(c, list)
}
