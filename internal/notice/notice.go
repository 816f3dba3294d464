package notice

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultDuration 编辑器端提示条的展示时长（毫秒）
const DefaultDuration = 5000

// Notice 是一条要在编辑器里弹出的临时提示
type Notice struct {
	Message  string `json:"message"`
	Duration int    `json:"duration_ms"`
}

// Collector 收集一次粘贴/拖拽处理过程中产生的所有提示。
// 批次内的上传是并发跑的，所以这里要加锁。
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, Notice{Message: msg, Duration: DefaultDuration})
	zap.L().Info("notice", zap.String("message", msg))
}

// All 返回收集到的提示，永远是非 nil 的切片，方便直接塞进 JSON 响应
func (c *Collector) All() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}
