package bridge

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"

	"giteeup/internal/notice"
	"giteeup/internal/svc"
	"giteeup/internal/upload"
	"giteeup/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *svc.ServiceContext
}

func NewHandler(s *svc.ServiceContext) *Handler {
	return &Handler{svc: s}
}

// HandlePaste / HandleDrop 是编辑器转发过来的两种事件，
// 处理逻辑完全一样，区别只在编辑器那边的事件来源
func (h *Handler) HandlePaste(c *gin.Context) { h.handleEvent(c) }
func (h *Handler) HandleDrop(c *gin.Context)  { h.handleEvent(c) }

func (h *Handler) handleEvent(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || form == nil || len(form.File["files"]) == 0 {
		// 没带文件：编辑器继续走默认行为，纯文本粘贴不受影响
		utils.Success(c, gin.H{"handled": false})
		return
	}
	files := candidatesFromForm(form.File["files"])

	cfg, err := h.svc.Settings.Load(c)
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "读取配置失败")
		return
	}

	// 配置每个事件都现读，设置页改了开关立刻生效
	if cfg.PromptForSubPath {
		sess := h.svc.Prompt.Open(files, h.svc.Settings.LastSubPath(c))
		utils.Success(c, gin.H{
			"handled": true,
			"prompt": gin.H{
				"session_id": sess.ID,
				"sub_path":   sess.SubPath,
			},
		})
		return
	}

	notices := notice.NewCollector()
	text := h.svc.Pipeline.Run(c, cfg, "", files, notices)
	utils.Success(c, gin.H{
		"handled": true,
		"text":    text,
		"notices": notices.All(),
	})
}

// candidatesFromForm 把 multipart 文件读进内存。弹框场景下批次要等用户
// 提交才上传，那时请求体早没了，所以这里必须先读出来。
// 读失败的文件不在这里报错，塞一个失败的 reader 进去，
// 让流水线按统一的降级路径（提示 + 空结果）处理。
func candidatesFromForm(headers []*multipart.FileHeader) []upload.Candidate {
	out := make([]upload.Candidate, 0, len(headers))
	for _, fh := range headers {
		out = append(out, upload.Candidate{
			Name:    fh.Filename,
			Size:    fh.Size,
			MIME:    fh.Header.Get("Content-Type"),
			Content: openFormFile(fh),
		})
	}
	return out
}

func openFormFile(fh *multipart.FileHeader) io.Reader {
	f, err := fh.Open()
	if err != nil {
		return failReader{err}
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return failReader{err}
	}
	return bytes.NewReader(raw)
}

type failReader struct{ err error }

func (r failReader) Read([]byte) (int, error) { return 0, r.err }
