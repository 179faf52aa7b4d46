package provider

import (
	"fmt"

	"github.com/John-Robertt/imdbtop/internal/domain"
)

// Registry 是 provider 的只读注册表（按类别索引，每个类别一个）。
type Registry struct {
	byCategory map[domain.Category]Provider
}

func NewRegistry(providers ...Provider) (Registry, error) {
	byCategory := make(map[domain.Category]Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		cat, err := domain.ParseCategory(string(p.Category()))
		if err != nil {
			return Registry{}, err
		}
		if _, ok := byCategory[cat]; ok {
			return Registry{}, fmt.Errorf("重复的 provider：%q", cat)
		}
		byCategory[cat] = p
	}
	return Registry{byCategory: byCategory}, nil
}

func (r Registry) Get(cat domain.Category) (Provider, bool) {
	if r.byCategory == nil {
		return nil, false
	}
	p, ok := r.byCategory[cat]
	return p, ok
}
