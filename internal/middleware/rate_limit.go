package middleware

import (
	"fmt"
	"net/http"
	"time"

	"giteeup/internal/infra/cache"
	"giteeup/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware 用 Redis 做滑动窗口限流，按客户端 IP 计数。
// Redis 出错时放行，限流挂了不应该挡住正常上传。
func RateLimitMiddleware(rdb *cache.RedisCache, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate:limit:%s:%s", c.ClientIP(), action)

		allowed, err := rdb.AllowRequest(c, key, limit, window)
		if err != nil {
			zap.L().Warn("rate limit redis error", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			utils.Error(c, http.StatusTooManyRequests, "操作太频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
