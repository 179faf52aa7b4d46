// Package catalog 持有一个类别的全量记录与当前视图，并提供过滤/排序/重置。
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/John-Robertt/imdbtop/internal/domain"
)

// InvalidYearError 表示年份/区间输入不是 4 位数字。
// 区间比较依赖定宽字符串的字典序，格式不对会静默误过滤，所以必须显式拒绝。
type InvalidYearError struct {
	Value string
}

func (e *InvalidYearError) Error() string {
	return fmt.Sprintf("年份必须是 4 位数字，实际是 %q", e.Value)
}

func IsInvalidYear(err error) bool {
	var e *InvalidYearError
	return errors.As(err, &e)
}

// Collection 是一个类别的内存记录集。
//
// 约束：
// - all 在 Load 之后只读；所有操作都只替换 view
// - view 永远是 all 的子序列（可重排）
// - 过滤作用于当前 view（逐步收窄），只有 Reset 能回到全量
type Collection struct {
	all    []domain.Record
	view   []domain.Record
	loaded bool
}

// New 返回一个空集合；需要 Load 后才有内容。
func New() *Collection { return &Collection{} }

// Load 用 records 覆盖全量与视图（包括已有的过滤状态）。
func (c *Collection) Load(records []domain.Record) {
	c.all = slices.Clone(records)
	c.view = slices.Clone(records)
	c.loaded = true
}

// FilterByYear 把视图收窄为 Year == year 的记录，保持原相对顺序。
func (c *Collection) FilterByYear(year string) error {
	if !domain.ValidYear(year) {
		return &InvalidYearError{Value: year}
	}
	c.view = c.filter(func(r domain.Record) bool { return r.Year == year })
	return nil
}

// FilterByPeriod 把视图收窄为 start <= Year <= end 的记录；start > end 时先交换。
func (c *Collection) FilterByPeriod(start, end string) error {
	if !domain.ValidYear(start) {
		return &InvalidYearError{Value: start}
	}
	if !domain.ValidYear(end) {
		return &InvalidYearError{Value: end}
	}
	if start > end {
		start, end = end, start
	}
	c.view = c.filter(func(r domain.Record) bool { return r.Year >= start && r.Year <= end })
	return nil
}

func (c *Collection) filter(keep func(domain.Record) bool) []domain.Record {
	out := make([]domain.Record, 0, len(c.view))
	for _, r := range c.view {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortByRating 按 (rating, rated_by) 降序稳定排序；两者都相同时保持原相对顺序。
func (c *Collection) SortByRating() {
	type keyed struct {
		rec    domain.Record
		rating float64
	}
	ks := make([]keyed, len(c.view))
	for i, r := range c.view {
		ks[i] = keyed{rec: r, rating: r.RatingValue()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].rating != ks[j].rating {
			return ks[i].rating > ks[j].rating
		}
		return ks[i].rec.RatedBy > ks[j].rec.RatedBy
	})
	view := make([]domain.Record, len(ks))
	for i := range ks {
		view[i] = ks[i].rec
	}
	c.view = view
}

// Reset 让视图回到全量（独立副本，后续对 view 的改动不影响 all）。
func (c *Collection) Reset() {
	c.view = slices.Clone(c.all)
}

// Loaded 表示是否已经 Load 过（空榜单也算已加载）。
func (c *Collection) Loaded() bool { return c.loaded }

// IsFilteredToEmpty 当且仅当当前视图为空时为 true。
func (c *Collection) IsFilteredToEmpty() bool { return len(c.view) == 0 }

// CurrentView 返回当前视图的副本。
func (c *Collection) CurrentView() []domain.Record { return slices.Clone(c.view) }

// FullSet 返回全量记录的副本。
func (c *Collection) FullSet() []domain.Record { return slices.Clone(c.all) }

// Contains 判断 title 是否出现在全量记录中。
func (c *Collection) Contains(title string) bool {
	for _, r := range c.all {
		if r.Title == title {
			return true
		}
	}
	return false
}
