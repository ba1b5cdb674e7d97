package generator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"story_weaver/history"
)

// Entry 是历史记录在某一时刻的可引用快照。
type Entry struct {
	Ref    history.Ref
	Record history.Record
}

// Session 持有一个用户的历史记录。Store 本身不加锁，这里用 mu 串行化
// 同一会话上的所有操作，保证模型调用不会重叠。
type Session struct {
	ID    string
	agent *Agent

	mu       sync.Mutex
	store    *history.Store
	lastSeen atomic.Int64
}

// NewSession 创建空会话。
func NewSession(id string, agent *Agent) *Session {
	s := &Session{
		ID:    id,
		agent: agent,
		store: history.NewStore(),
	}
	s.touch()
	return s
}

// Generate 模板模式生成；仅在模型成功返回后追加记录。
func (s *Session) Generate(ctx context.Context, p Params) (Entry, error) {
	return s.generate(ctx, p, false)
}

// GenerateCustom 自定义 prompt 模式生成。
func (s *Session) GenerateCustom(ctx context.Context, p Params) (Entry, error) {
	return s.generate(ctx, p, true)
}

func (s *Session) generate(ctx context.Context, p Params, custom bool) (Entry, error) {
	if custom {
		if err := p.ValidateCustom(); err != nil {
			return Entry{}, err
		}
	} else {
		p.CustomPrompt = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	rec, err := s.agent.Generate(ctx, p)
	if err != nil {
		return Entry{}, err
	}
	idx := s.store.Append(rec)
	return Entry{Ref: s.store.Ref(idx), Record: rec}, nil
}

// Translate 翻译 ref 指向的记录；清空后的旧引用返回 history.ErrIndexOutOfRange。
func (s *Session) Translate(ctx context.Context, ref history.Ref, target string) (Entry, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	rec, err := s.store.Resolve(ref)
	if err != nil {
		return Entry{}, "", err
	}
	text, err := s.agent.Translate(ctx, rec.Content, target)
	if err != nil {
		return Entry{}, "", err
	}
	return Entry{Ref: ref, Record: rec}, text, nil
}

// Get 按引用读取一条记录。
func (s *Session) Get(ref history.Ref) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	rec, err := s.store.Resolve(ref)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Ref: ref, Record: rec}, nil
}

// Ref 返回当前 epoch 下 index 的引用。
func (s *Session) Ref(index int) history.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Ref(index)
}

// Entries 返回快照；recent 为 true 时按最新在前排列。
func (s *Session) Entries(recent bool) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	view := s.store.All()
	if recent {
		view = s.store.Reverse()
	}
	out := make([]Entry, 0, s.store.Len())
	for i, rec := range view {
		out = append(out, Entry{Ref: s.store.Ref(i), Record: rec})
	}
	return out
}

// Clear 清空历史，返回清空前的条数。
func (s *Session) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	n := s.store.Len()
	s.store.Clear()
	return n
}

// Stats 汇总条数与语言。
func (s *Session) Stats() history.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Stats()
}

// IdleSince 返回最后一次访问时间；不会等待进行中的模型调用。
func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(s.agent.now().UnixNano())
}
