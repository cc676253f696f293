package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// JDVectorCache 岗位描述向量缓存
// 同一批次内多份简历对同一岗位描述评分时，避免重复编码岗位描述。
// 纯优化：Get未命中或后端出错时由调用方重新编码，不影响正确性。
type JDVectorCache interface {
	// Get 按键取缓存向量，第二个返回值表示是否命中
	Get(ctx context.Context, key string) ([]float64, bool)

	// Put 写入缓存向量，失败静默（仅日志），不向调用方传播
	Put(ctx context.Context, key string, vector []float64)
}

// JDCacheKey 由(模型, 池化策略, 岗位描述文本)计算缓存键
// 任何一项变化都会产生不同的向量，必须进键
func JDCacheKey(model, pooling, jobDescription string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(pooling))
	h.Write([]byte{0})
	h.Write([]byte(jobDescription))
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryJDCache 进程内的JD向量缓存，默认后端
type MemoryJDCache struct {
	mu      sync.RWMutex
	vectors map[string][]float64
}

// NewMemoryJDCache 创建内存缓存
func NewMemoryJDCache() *MemoryJDCache {
	return &MemoryJDCache{vectors: make(map[string][]float64)}
}

// Get 实现 JDVectorCache
func (c *MemoryJDCache) Get(_ context.Context, key string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.vectors[key]
	return vector, ok
}

// Put 实现 JDVectorCache
func (c *MemoryJDCache) Put(_ context.Context, key string, vector []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = vector
}
