// Package game 管理服务端的对局：分配 id、按 id 串行化访问、调用引擎走子、清理闲置对局。
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"xiangqi/internal/engine"
	core "xiangqi/internal/game"
	"xiangqi/internal/notation"
	"xiangqi/internal/xiangqi"
)

var (
	ErrSessionNotFound   = errors.New("game not found")
	ErrInvalidDifficulty = errors.New("difficulty must be between 3 and 5")
)

const (
	MinDifficulty = 3
	MaxDifficulty = 5
)

// Publisher 在对局状态变化后收到一份快照（例如推送给 websocket 观察者）。
type Publisher interface {
	Publish(s *core.Session)
}

type Options struct {
	Store          Store
	Engine         *engine.Engine
	SearchDepth    int
	SearchTimeout  time.Duration
	CheckMateDepth int
	Logger         zerolog.Logger

	// 测试时可替换
	Now   func() time.Time
	NewID func() string
}

type Manager struct {
	store  Store
	engine *engine.Engine
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string

	mu        sync.RWMutex
	locks     map[string]*sync.Mutex
	depth     int
	timeout   time.Duration
	mateDepth int
	publisher Publisher
}

// AIMoveResult 引擎走子的结果；Session 是走完之后的快照。
type AIMoveResult struct {
	Move       xiangqi.Move
	Search     engine.SearchResult
	Evaluation string
	Session    *core.Session
}

func NewManager(opts Options) *Manager {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Engine == nil {
		opts.Engine = engine.NewEngine(0)
	}
	if opts.SearchDepth <= 0 {
		opts.SearchDepth = engine.DefaultMaxDepth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Manager{
		store:     opts.Store,
		engine:    opts.Engine,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
		locks:     make(map[string]*sync.Mutex),
		depth:     opts.SearchDepth,
		timeout:   opts.SearchTimeout,
		mateDepth: opts.CheckMateDepth,
	}
}

// SetPublisher 只应在开始服务前调用一次。
func (m *Manager) SetPublisher(p Publisher) {
	m.mu.Lock()
	m.publisher = p
	m.mu.Unlock()
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *Manager) publish(s *core.Session) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	if p != nil {
		p.Publish(s)
	}
}

// NewGame player 是人类执的一方。
func (m *Manager) NewGame(player xiangqi.Side) *core.Session {
	s := core.New(m.newID(), player)
	s.CreatedAt = m.now()
	s.UpdatedAt = s.CreatedAt
	m.store.Put(s)
	m.log.Info().Str("session", s.ID).Stringer("side", s.PlayerSide).Msg("session created")
	return s.Clone()
}

// acquire 锁住该局并返回它；不存在时不会留下锁。
func (m *Manager) acquire(id string) (*core.Session, func(), bool) {
	if _, ok := m.store.Get(id); !ok {
		return nil, nil, false
	}
	l := m.lockFor(id)
	l.Lock()
	// 等锁期间可能已被清理
	s, ok := m.store.Get(id)
	if !ok {
		l.Unlock()
		return nil, nil, false
	}
	return s, l.Unlock, true
}

// Get 返回快照；修改快照不影响对局本身。
func (m *Manager) Get(id string) (*core.Session, bool) {
	s, unlock, ok := m.acquire(id)
	if !ok {
		return nil, false
	}
	defer unlock()
	return s.Clone(), true
}

// with 在该局的锁内执行 fn，成功后推送新状态。
func (m *Manager) with(id string, fn func(s *core.Session) error) (*core.Session, error) {
	s, unlock, ok := m.acquire(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if err := fn(s); err != nil {
		unlock()
		return nil, err
	}
	s.UpdatedAt = m.now()
	snap := s.Clone()
	unlock()

	m.publish(snap)
	return snap, nil
}

func (m *Manager) Move(id string, from, to xiangqi.Square) (*core.Session, error) {
	return m.with(id, func(s *core.Session) error {
		mv, err := s.Apply(from, to)
		if err != nil {
			return err
		}
		m.logMove(s, mv, "move applied")
		return nil
	})
}

func (m *Manager) Undo(id string, n int) (*core.Session, error) {
	return m.with(id, func(s *core.Session) error {
		if err := s.Undo(n); err != nil {
			return err
		}
		m.log.Info().Str("session", id).Int("plies", n).Str("status", string(s.Status)).Msg("undo")
		return nil
	})
}

// AIMove 让引擎为当前走子方选一步并走掉。搜索期间持有该局的锁，
// 同一局的其它请求会等待；其它对局不受影响。搜索出错时不走任何棋。
func (m *Manager) AIMove(ctx context.Context, id string) (AIMoveResult, error) {
	var out AIMoveResult
	m.mu.RLock()
	cfg := engine.SearchConfig{
		MaxDepth:       m.depth,
		TimeLimit:      m.timeout,
		CheckMateDepth: m.mateDepth,
	}
	m.mu.RUnlock()

	snap, err := m.with(id, func(s *core.Session) error {
		if s.IsOver() {
			return core.ErrGameOver
		}
		cfg.OnDepth = func(r engine.SearchResult) {
			m.log.Debug().Str("session", id).Int("depth", r.Depth).Int("score", r.Score).
				Int64("nodes", r.Nodes).Dur("elapsed", r.TimeUsed).Msg("search iteration")
		}
		res, err := m.engine.Search(ctx, s.Board, s.SideToMove, cfg)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		mv, err := s.Apply(res.BestMove.From, res.BestMove.To)
		if err != nil {
			return fmt.Errorf("engine move rejected: %w", err)
		}
		m.log.Info().Str("session", id).Int("depth", res.Depth).Int("score", res.Score).
			Int64("nodes", res.Nodes).Dur("elapsed", res.TimeUsed).Msg("ai search")
		m.logMove(s, mv, "ai move applied")
		out.Move = mv
		out.Search = res
		out.Evaluation = engine.Describe(res.Score)
		return nil
	})
	if err != nil {
		return AIMoveResult{}, err
	}
	out.Session = snap
	return out, nil
}

func (m *Manager) logMove(s *core.Session, mv xiangqi.Move, msg string) {
	ev := m.log.Info().Str("session", s.ID).Str("move", notation.FormatMove(mv.From, mv.To))
	if mv.IsCapture() {
		ev = ev.Stringer("captured", mv.Captured)
	}
	ev.Str("status", string(s.Status)).Msg(msg)
}

func (m *Manager) SetDifficulty(depth int) error {
	if depth < MinDifficulty || depth > MaxDifficulty {
		return fmt.Errorf("%w: got %d", ErrInvalidDifficulty, depth)
	}
	m.mu.Lock()
	m.depth = depth
	m.mu.Unlock()
	m.log.Info().Int("depth", depth).Msg("difficulty changed")
	return nil
}

func (m *Manager) Difficulty() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.depth
}

func (m *Manager) Remove(id string) bool {
	_, unlock, ok := m.acquire(id)
	if !ok {
		return false
	}
	m.store.Delete(id)
	unlock()

	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
	m.log.Info().Str("session", id).Msg("session removed")
	return true
}

// Prune 清理超过 maxIdle 没有更新的对局，返回清理数量。
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	var stale []string
	m.store.Range(func(s *core.Session) bool {
		cur, unlock, ok := m.acquire(s.ID)
		if !ok {
			return true
		}
		if cur.UpdatedAt.Before(cutoff) {
			stale = append(stale, s.ID)
		}
		unlock()
		return true
	})
	n := 0
	for _, id := range stale {
		if m.Remove(id) {
			n++
			m.log.Info().Str("session", id).Dur("max_idle", maxIdle).Msg("session evicted")
		}
	}
	return n
}

// RunPruner 周期性清理，直到 ctx 结束。
func (m *Manager) RunPruner(ctx context.Context, every, maxIdle time.Duration) {
	if every <= 0 || maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune(maxIdle)
		}
	}
}

func (m *Manager) Len() int { return m.store.Len() }
