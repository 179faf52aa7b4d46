package domain

import (
	"fmt"
	"strings"
)

// Category 是榜单类别；每个类别对应一个独立的 Collection/Engine 会话。
type Category string

const (
	CategoryMovies Category = "movies"
	CategoryShows  Category = "shows"
)

// ParseCategory 接受 movies/shows（大小写与首尾空白不敏感）。
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMovies:
		return CategoryMovies, nil
	case CategoryShows:
		return CategoryShows, nil
	case "":
		return "", fmt.Errorf("category 不能为空")
	default:
		return "", fmt.Errorf("category 只能是 movies 或 shows，实际是 %q", s)
	}
}

// Noun 是该类别在表头与 CSV 列名里使用的名词（"Movie" / "TV Show"）。
func (c Category) Noun() string {
	if c == CategoryShows {
		return "TV Show"
	}
	return "Movie"
}
