// Package recommend 从集合的当前视图里随机推荐，且不重复推荐用户已拒绝的条目。
package recommend

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/John-Robertt/imdbtop/internal/domain"
)

// State 是推荐器相对于当前视图的状态。
type State int

const (
	// Ready 表示当前视图里还有未被拒绝的条目。
	Ready State = iota
	// Exhausted 表示当前视图里的每个 title 都已被拒绝（含视图为空）。
	Exhausted
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// ErrUnknownTitle 表示拒绝的 title 不在集合的全量记录中。
var ErrUnknownTitle = errors.New("recommend: title 不在全量记录中")

// Source 是推荐器依赖的集合视图（catalog.Collection 实现了它）。
type Source interface {
	CurrentView() []domain.Record
	Contains(title string) bool
}

// Engine 记录一个集合实例上的已拒绝 title。
//
// 约束：
// - rejected 只包含全量记录里出现过的 title
// - 没有清空操作；换一个 Engine 才会清空（一个会话一个 Engine）
// - 非并发安全；会话内顺序调用
type Engine struct {
	src      Source
	rnd      *rand.Rand
	rejected map[string]struct{}
}

// New 构造推荐器；rnd 为 nil 时使用按时间播种的随机源。
func New(src Source, rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		src:      src,
		rnd:      rnd,
		rejected: make(map[string]struct{}),
	}
}

// Recommend 从当前视图里均匀随机抽一个未被拒绝的条目。
// 抽到的条目不会自动记为拒绝；只有 Reject 才会。
//
// 先判断 Exhausted 再抽样：只要走到抽样循环，就至少存在一个候选，循环必然结束。
func (e *Engine) Recommend() (domain.Record, State) {
	view := e.src.CurrentView()
	if e.exhausted(view) {
		return domain.Record{}, Exhausted
	}
	for {
		r := view[e.rnd.Intn(len(view))]
		if !e.IsRejected(r.Title) {
			return r, Ready
		}
	}
}

// State 返回推荐器相对于当前视图的状态（不抽样）。
func (e *Engine) State() State {
	if e.exhausted(e.src.CurrentView()) {
		return Exhausted
	}
	return Ready
}

// Reject 记录用户已看过/不想要的 title；之后的 Recommend 不会再返回它。
func (e *Engine) Reject(title string) error {
	if !e.src.Contains(title) {
		return ErrUnknownTitle
	}
	e.rejected[title] = struct{}{}
	return nil
}

func (e *Engine) IsRejected(title string) bool {
	_, ok := e.rejected[title]
	return ok
}

// Rejected 返回已拒绝的 title（字典序）。
func (e *Engine) Rejected() []string {
	out := make([]string, 0, len(e.rejected))
	for t := range e.rejected {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) exhausted(view []domain.Record) bool {
	for _, r := range view {
		if !e.IsRejected(r.Title) {
			return false
		}
	}
	return true
}
