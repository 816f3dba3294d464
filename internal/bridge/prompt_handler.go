package bridge

import (
	"net/http"

	"giteeup/internal/notice"
	"giteeup/internal/utils"

	"github.com/gin-gonic/gin"
)

type subPathRequest struct {
	SubPath string `json:"sub_path"`
}

// UpdateSubPath 弹框里每敲一个键就会打过来一次，
// 立刻把最新值存下来，之后不管提交还是取消，下次弹框都用它预填
func (h *Handler) UpdateSubPath(c *gin.Context) {
	if _, ok := h.svc.Prompt.Get(c.Param("id")); !ok {
		utils.Error(c, http.StatusNotFound, "弹框不存在或已关闭")
		return
	}

	var req subPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusUnprocessableEntity, "invalid sub path")
		return
	}

	if err := h.svc.Settings.SetLastSubPath(c, req.SubPath); err != nil {
		utils.Error(c, http.StatusInternalServerError, "保存子路径失败")
		return
	}
	utils.Success(c, gin.H{"sub_path": req.SubPath})
}

// SubmitPrompt 用户点了确定：用当前输入的子路径上传整批文件，
// 返回要插到编辑器光标处的文本，弹框关闭
func (h *Handler) SubmitPrompt(c *gin.Context) {
	var req subPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusUnprocessableEntity, "invalid sub path")
		return
	}

	sess, ok := h.svc.Prompt.Close(c.Param("id"))
	if !ok {
		utils.Error(c, http.StatusNotFound, "弹框不存在或已关闭")
		return
	}

	_ = h.svc.Settings.SetLastSubPath(c, req.SubPath)

	cfg, err := h.svc.Settings.Load(c)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "读取配置失败")
		return
	}

	notices := notice.NewCollector()
	text := h.svc.Pipeline.Run(c, cfg, req.SubPath, sess.Files, notices)
	utils.Success(c, gin.H{
		"text":    text,
		"notices": notices.All(),
	})
}

// CancelPrompt 用户关掉了弹框，这批文件就不上传了。
// 已经记住的子路径保持原样。
func (h *Handler) CancelPrompt(c *gin.Context) {
	if _, ok := h.svc.Prompt.Close(c.Param("id")); !ok {
		utils.Error(c, http.StatusNotFound, "弹框不存在或已关闭")
		return
	}
	utils.Success(c, gin.H{"closed": true})
}
