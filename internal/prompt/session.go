package prompt

import (
	"sync"
	"time"

	"giteeup/internal/upload"

	"github.com/google/uuid"
)

// Session 一个等待用户确认子路径的上传批次，对应编辑器里打开着的弹框。
// 从打开到提交/取消之间，文件内容一直留在内存里。
type Session struct {
	ID string
	// 打开弹框时的预填值（上次记住的子路径）
	SubPath   string
	Files     []upload.Candidate
	CreatedAt time.Time
}

// Manager 持有所有打开中的弹框。提交和取消都会把会话移除，
// 没有超时淘汰：用户不操作弹框就一直开着。
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

func (m *Manager) Open(files []upload.Candidate, prefill string) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		SubPath:   prefill,
		Files:     files,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close 移除并返回会话。提交和取消走的都是这里，
// 第二次 Close 同一个 id 会返回 false。
func (m *Manager) Close(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	return s, ok
}
