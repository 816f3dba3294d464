package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"giteeup/config"
	"giteeup/internal/gitee"
	"giteeup/internal/history"
	"giteeup/internal/infra/cache"
	"giteeup/internal/prompt"
	"giteeup/internal/settings"
	"giteeup/internal/svc"
	"giteeup/internal/upload"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitee 模拟 Gitee 的新建文件接口，按文件名决定成功还是失败
type fakeGitee struct {
	srv *httptest.Server

	mu    sync.Mutex
	paths []string
	// 文件名 → 错误信息
	failWith map[string]string
}

func newFakeGitee() *fakeGitee {
	f := &fakeGitee{failWith: map[string]string{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const marker = "/contents/"
		repoPath := r.URL.Path[strings.Index(r.URL.Path, marker)+len(marker):]
		name := repoPath[strings.LastIndex(repoPath, "/")+1:]

		f.mu.Lock()
		f.paths = append(f.paths, repoPath)
		f.mu.Unlock()

		if msg, ok := f.failWith[name]; ok {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprintf(w, `{"message":%q}`, msg)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"content":{"download_url":"https://x/%s"}}`, name)
	}))
	return f
}

func (f *fakeGitee) uploadedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.paths...)
}

type testEnv struct {
	router *gin.Engine
	svc    *svc.ServiceContext
	gitee  *fakeGitee
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb, err := cache.New(&config.Config{RedisHost: mr.Host(), RedisPort: mr.Port()})
	require.NoError(t, err)

	fake := newFakeGitee()
	t.Cleanup(fake.srv.Close)

	client := gitee.NewClient(fake.srv.URL)
	hist := history.New(nil)

	s := &svc.ServiceContext{
		Config:   &config.Config{GiteeAPIBase: fake.srv.URL},
		Cache:    rdb,
		Settings: settings.NewStore(rdb),
		Gitee:    client,
		History:  hist,
		Pipeline: upload.NewPipeline(client, hist),
		Prompt:   prompt.NewManager(),
	}

	r := gin.New()
	RegisterRoutes(r, s)
	return &testEnv{router: r, svc: s, gitee: fake}
}

func (e *testEnv) saveSettings(t *testing.T, cfg settings.Settings) {
	t.Helper()
	require.NoError(t, e.svc.Settings.Save(context.Background(), cfg))
}

type formFile struct {
	name    string
	mime    string
	content []byte
}

func multipartBody(t *testing.T, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="files"; filename=%q`, f.name))
		h.Set("Content-Type", f.mime)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

type eventResponse struct {
	Handled bool   `json:"handled"`
	Text    string `json:"text"`
	Notices []struct {
		Message  string `json:"message"`
		Duration int    `json:"duration_ms"`
	} `json:"notices"`
	Prompt struct {
		SessionID string `json:"session_id"`
		SubPath   string `json:"sub_path"`
	} `json:"prompt"`
}

func (e *testEnv) postEvent(t *testing.T, path string, files ...formFile) eventResponse {
	t.Helper()
	body, contentType := multipartBody(t, files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decodeEvent(t, w.Body.Bytes())
}

func decodeEvent(t *testing.T, raw []byte) eventResponse {
	t.Helper()
	var envelope struct {
		Data eventResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope.Data
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func directSettings() settings.Settings {
	cfg := settings.Defaults()
	cfg.Repo = "autumn/img-bed"
	cfg.AccessToken = "tok"
	cfg.PromptForSubPath = false
	return cfg
}

func TestEventWithoutFilesIsNotHandled(t *testing.T) {
	env := newTestEnv(t)

	got := env.postEvent(t, "/events/paste")
	assert.False(t, got.Handled)
	assert.Empty(t, env.gitee.uploadedPaths())
}

func TestDirectUploadBareURLForGenericFile(t *testing.T) {
	env := newTestEnv(t)
	env.saveSettings(t, directSettings())

	got := env.postEvent(t, "/events/paste",
		formFile{"c.txt", "text/plain", []byte("hello")})

	assert.True(t, got.Handled)
	assert.Equal(t, "https://x/c.txt", got.Text)
	assert.Empty(t, got.Notices)
	assert.Equal(t, []string{"c.txt"}, env.gitee.uploadedPaths())
}

func TestDirectUploadImageMarkdownAndOversizedDropped(t *testing.T) {
	env := newTestEnv(t)
	env.saveSettings(t, directSettings())

	big := bytes.Repeat([]byte("b"), 11*1024*1024)
	got := env.postEvent(t, "/events/drop",
		formFile{"a.png", "image/png", []byte("img-bytes")},
		formFile{"b.pdf", "application/pdf", big})

	assert.True(t, got.Handled)
	assert.Equal(t, "![a.png](https://x/a.png)", got.Text)

	require.Len(t, got.Notices, 1)
	assert.Contains(t, got.Notices[0].Message, "b.pdf将会被丢弃")
	assert.Equal(t, 5000, got.Notices[0].Duration)

	// 超限文件从没被上传过
	assert.Equal(t, []string{"a.png"}, env.gitee.uploadedPaths())
}

func TestRemoteFailureIsSoftAndEchoesServerMessage(t *testing.T) {
	env := newTestEnv(t)
	env.saveSettings(t, directSettings())
	env.gitee.failWith["b.jpg"] = "quota exceeded"

	got := env.postEvent(t, "/events/paste",
		formFile{"a.png", "image/png", []byte("x")},
		formFile{"b.jpg", "image/jpeg", []byte("y")})

	// 失败的文件不出现在插入文本里，批次照常完成
	assert.Equal(t, "![a.png](https://x/a.png)", got.Text)
	require.Len(t, got.Notices, 1)
	assert.Contains(t, got.Notices[0].Message, "b.jpg")
	assert.Contains(t, got.Notices[0].Message, "quota exceeded")
}

func TestPromptFlow(t *testing.T) {
	env := newTestEnv(t)
	cfg := directSettings()
	cfg.PromptForSubPath = true
	env.saveSettings(t, cfg)
	require.NoError(t, env.svc.Settings.SetLastSubPath(context.Background(), "imgs"))

	// 1. 粘贴事件不直接上传，而是开弹框，预填上次的子路径
	got := env.postEvent(t, "/events/paste",
		formFile{"a.png", "image/png", []byte("x")})
	assert.True(t, got.Handled)
	require.NotEmpty(t, got.Prompt.SessionID)
	assert.Equal(t, "imgs", got.Prompt.SubPath)
	assert.Empty(t, env.gitee.uploadedPaths())

	id := got.Prompt.SessionID

	// 2. 用户把子路径改成 images，每次键入都立刻记住
	w := env.doJSON(t, http.MethodPut, "/prompt/"+id+"/subpath", subPathRequest{SubPath: "images"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "images", env.svc.Settings.LastSubPath(context.Background()))

	// 3. 提交：按当前输入的子路径上传，返回插入文本
	w = env.doJSON(t, http.MethodPost, "/prompt/"+id+"/submit", subPathRequest{SubPath: "images"})
	require.Equal(t, http.StatusOK, w.Code)
	sub := decodeEvent(t, w.Body.Bytes())
	assert.Equal(t, "![a.png](https://x/a.png)", sub.Text)
	assert.Equal(t, []string{"images/a.png"}, env.gitee.uploadedPaths())

	// 4. 弹框已关闭，重复提交 404
	w = env.doJSON(t, http.MethodPost, "/prompt/"+id+"/submit", subPathRequest{SubPath: "images"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 5. 下一次弹框用最新记住的值预填
	got = env.postEvent(t, "/events/paste",
		formFile{"b.png", "image/png", []byte("y")})
	assert.Equal(t, "images", got.Prompt.SubPath)
}

func TestPromptCancelDiscardsBatch(t *testing.T) {
	env := newTestEnv(t)
	cfg := directSettings()
	cfg.PromptForSubPath = true
	env.saveSettings(t, cfg)
	require.NoError(t, env.svc.Settings.SetLastSubPath(context.Background(), "imgs"))

	got := env.postEvent(t, "/events/drop",
		formFile{"a.png", "image/png", []byte("x")})
	id := got.Prompt.SessionID

	w := env.doJSON(t, http.MethodDelete, "/prompt/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 取消后什么都没上传，记住的子路径不变
	assert.Empty(t, env.gitee.uploadedPaths())
	assert.Equal(t, "imgs", env.svc.Settings.LastSubPath(context.Background()))

	w = env.doJSON(t, http.MethodPost, "/prompt/"+id+"/submit", subPathRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPromptToggleIsReadPerEvent(t *testing.T) {
	env := newTestEnv(t)
	env.saveSettings(t, directSettings())

	got := env.postEvent(t, "/events/paste",
		formFile{"a.txt", "text/plain", []byte("x")})
	assert.Equal(t, "https://x/a.txt", got.Text)

	// 打开弹框开关后，下一个事件立刻改走弹框路径
	cfg := directSettings()
	cfg.PromptForSubPath = true
	env.saveSettings(t, cfg)

	got = env.postEvent(t, "/events/paste",
		formFile{"b.txt", "text/plain", []byte("y")})
	assert.NotEmpty(t, got.Prompt.SessionID)
}

func TestSettingsRoundTripOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	want := settings.Settings{
		Repo:             "autumn/img-bed",
		Branch:           "main",
		BasePath:         "/assets",
		AccessToken:      "tok",
		PromptForSubPath: false,
	}
	w := env.doJSON(t, http.MethodPut, "/settings", want)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data settings.Settings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, want, envelope.Data)
}

func TestBasePathUsedInUploadPath(t *testing.T) {
	env := newTestEnv(t)
	cfg := directSettings()
	cfg.BasePath = "/imgs"
	env.saveSettings(t, cfg)

	_ = env.postEvent(t, "/events/paste",
		formFile{"a.png", "image/png", []byte("x")})
	assert.Equal(t, []string{"imgs/a.png"}, env.gitee.uploadedPaths())
}
