package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classgrid/backend/pkg/redis"
	"classgrid/backend/pkg/response"
)

const rateLimitPrefix = "classgrid:ratelimit"

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 挂在 JWTAuth 之后的路由按用户计数（同一管理员换 IP 仍共用额度），
// 登录等匿名路由按客户端 IP 计数。
// rdb 为 nil 或 Redis 出错时降级放行（与 JWTAuth 策略一致）
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), rateLimitKey(c), limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitKey classgrid:ratelimit:<路由>:user:<id> 或 classgrid:ratelimit:<路由>:ip:<addr>
func rateLimitKey(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return fmt.Sprintf("%s:%s:user:%s", rateLimitPrefix, c.FullPath(), uid)
	}
	return fmt.Sprintf("%s:%s:ip:%s", rateLimitPrefix, c.FullPath(), c.ClientIP())
}
