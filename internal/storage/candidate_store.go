package storage

import (
	"fmt"
	"sort"
	"sync"

	"resume-ranker/internal/types"
)

// ErrCandidateNotFound 按ID查询不到候选人记录
var ErrCandidateNotFound = fmt.Errorf("候选人记录不存在")

// CandidateStore 进程内候选人表
// 追加写，只在进程生命周期内存在，进程退出即丢失（刻意不做持久化）。
// 由构造方显式持有并传入流水线，不做包级全局变量。
// ID单调递增且永不复用；插入与自增在同一临界区内完成。
type CandidateStore struct {
	mu      sync.RWMutex
	records map[uint64]*types.CandidateRecord
	order   []uint64 // 插入顺序，用于稳定排序的平局处理
	nextID  uint64
}

// NewCandidateStore 创建一张空表
func NewCandidateStore() *CandidateStore {
	return &CandidateStore{
		records: make(map[uint64]*types.CandidateRecord),
		nextID:  1,
	}
}

// Insert 分配新ID并写入记录，返回分配的ID
// record.ID 由本方法填充，调用方不应预设
func (s *CandidateStore) Insert(record *types.CandidateRecord) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	record.ID = id
	s.records[id] = record
	s.order = append(s.order, id)
	return id
}

// Get 按ID取完整记录
func (s *CandidateStore) Get(id uint64) (*types.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrCandidateNotFound, id)
	}
	return record, nil
}

// List 按分数降序返回(ID, 文件名, 分数)
// 使用稳定排序：同分记录保持插入顺序，多次调用结果确定
func (s *CandidateStore) List() []types.CandidateSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]types.CandidateSummary, 0, len(s.order))
	for _, id := range s.order {
		record := s.records[id]
		summaries = append(summaries, types.CandidateSummary{
			ID:       record.ID,
			Filename: record.Filename,
			Score:    record.MatchScore,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Score > summaries[j].Score
	})
	return summaries
}

// Len 当前记录数
func (s *CandidateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
