package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"giteeup/internal/infra/cache"
)

const (
	settingsKey = "giteeup:settings"
	subPathKey  = "giteeup:last_sub_path"
)

// Settings 对应设置界面上的五个可配置项
type Settings struct {
	// 仓库标识，格式 owner/repo
	Repo        string `json:"repo"`
	Branch      string `json:"branch"`
	BasePath    string `json:"base_path"`
	AccessToken string `json:"access_token"`
	// 粘贴/拖拽时是否先弹框询问子路径
	PromptForSubPath bool `json:"prompt_for_sub_path"`
}

func Defaults() Settings {
	return Settings{
		Repo:             "",
		Branch:           "master",
		BasePath:         "/",
		AccessToken:      "",
		PromptForSubPath: true,
	}
}

// Store 负责两块持久化状态：完整的 Settings 对象（整存整取），
// 以及单独的一条“上次输入的子路径”。后者每敲一个键就会写一次，
// 所以故意跟 Settings 的生命周期分开，避免高频写把整个配置对象刷来刷去。
type Store struct {
	cache *cache.RedisCache
}

func NewStore(c *cache.RedisCache) *Store {
	return &Store{cache: c}
}

// Load 读出保存的配置。没存过就返回默认值；
// 存过但缺字段的（比如旧版本存的），缺的字段落回默认值（浅合并）。
func (s *Store) Load(ctx context.Context) (Settings, error) {
	loaded := Defaults()

	raw, err := s.cache.Get(ctx, settingsKey)
	if err != nil {
		if cache.IsNil(err) {
			return loaded, nil
		}
		return loaded, fmt.Errorf("load settings: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	return loaded, nil
}

// Save 整个对象一起存，保证 Load 回来跟存进去的一模一样
func (s *Store) Save(ctx context.Context, cfg Settings) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.cache.Set(ctx, settingsKey, string(raw), 0); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LastSubPath 上次在弹框里输入的子路径，没有就是空串
func (s *Store) LastSubPath(ctx context.Context) string {
	v, err := s.cache.Get(ctx, subPathKey)
	if err != nil {
		return ""
	}
	return v
}

// SetLastSubPath 弹框里每次键入都会调用，立刻落盘，
// 不管用户最后是提交还是取消，下次弹框都用最新值预填
func (s *Store) SetLastSubPath(ctx context.Context, v string) error {
	return s.cache.Set(ctx, subPathKey, v, 0)
}
