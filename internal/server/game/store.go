package game

import (
	"sync"

	core "xiangqi/internal/game"
)

// Store 保存对局。实现需要自身并发安全；单局内的串行化由 Manager 负责。
type Store interface {
	Put(s *core.Session)
	Get(id string) (*core.Session, bool)
	Delete(id string) bool
	// Range 遍历所有对局，fn 返回 false 时停止
	Range(fn func(s *core.Session) bool)
	Len() int
}

// MemoryStore 进程内存储，重启即丢失。
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*core.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]*core.Session)}
}

func (m *MemoryStore) Put(s *core.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[s.ID] = s
}

func (m *MemoryStore) Get(id string) (*core.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[id]
	return s, ok
}

func (m *MemoryStore) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return false
	}
	delete(m.games, id)
	return true
}

func (m *MemoryStore) Range(fn func(s *core.Session) bool) {
	m.mu.RLock()
	list := make([]*core.Session, 0, len(m.games))
	for _, s := range m.games {
		list = append(list, s)
	}
	m.mu.RUnlock()
	for _, s := range list {
		if !fn(s) {
			return
		}
	}
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
