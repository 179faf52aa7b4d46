package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/imdbtop/internal/domain"
	"github.com/John-Robertt/imdbtop/internal/infra/fsx"
)

// Store 提供 <dir>/<category>.html 的榜单页缓存读写（用于离线重跑）。
//
// 约束：ReadOnly=true 时只允许读（例如 --offline）。
type Store struct {
	Dir      string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(dir string, readOnly bool) Store {
	return Store{
		Dir:      filepath.Clean(strings.TrimSpace(dir)),
		ReadOnly: readOnly,
	}
}

// PagePath 返回某类别榜单页缓存的路径。
func (s Store) PagePath(cat domain.Category) (string, error) {
	name, err := pageName(cat)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, name), nil
}

// ReadPage 读取缓存；不存在时返回 ok=false 而不是错误。
func (s Store) ReadPage(cat domain.Category) ([]byte, bool, error) {
	path, err := s.PagePath(cat)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WritePage(cat domain.Category, html []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	name, err := pageName(cat)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.Dir, name, html)
}

func pageName(cat domain.Category) (string, error) {
	// 类别是枚举；这里顺便防止路径穿越。
	c, err := domain.ParseCategory(string(cat))
	if err != nil {
		return "", fmt.Errorf("非法类别：%w", err)
	}
	return string(c) + ".html", nil
}
