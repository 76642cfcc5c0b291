package common

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// WithRequestID 將請求 ID 放入 context，供下游記錄日誌
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext 取出請求 ID，沒有時回傳空字串
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WriteError 寫入錯誤響應；非 CustomError 一律視為內部錯誤
func WriteError(c *gin.Context, err error, debug bool) {
	ce, ok := AsCustomError(err)
	if !ok {
		ce = ErrInternalError.WithCause(err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(debug))
}
