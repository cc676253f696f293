package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJDCacheKeyDistinguishesInputs(t *testing.T) {
	base := JDCacheKey("model-a", "mean", "backend engineer")

	assert.Equal(t, base, JDCacheKey("model-a", "mean", "backend engineer"))
	assert.NotEqual(t, base, JDCacheKey("model-b", "mean", "backend engineer"), "模型变化必须改变键")
	assert.NotEqual(t, base, JDCacheKey("model-a", "cls", "backend engineer"), "池化策略变化必须改变键")
	assert.NotEqual(t, base, JDCacheKey("model-a", "mean", "frontend engineer"), "文本变化必须改变键")

	// 字段边界不能混淆：("ab","c") 和 ("a","bc") 要产生不同的键
	assert.NotEqual(t, JDCacheKey("ab", "c", "x"), JDCacheKey("a", "bc", "x"))
}

func TestMemoryJDCache(t *testing.T) {
	cache := NewMemoryJDCache()
	ctx := context.Background()

	_, hit := cache.Get(ctx, "missing")
	assert.False(t, hit)

	vector := []float64{0.1, 0.2, 0.3}
	cache.Put(ctx, "key", vector)

	got, hit := cache.Get(ctx, "key")
	assert.True(t, hit)
	assert.Equal(t, vector, got)
}
