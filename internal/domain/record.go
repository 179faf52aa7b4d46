package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// RawRecord 是抓取层交给核心的原始字段（未校验、未规范化）。
// RatedBy 可能带千分位逗号，例如 "2,589,631"。
type RawRecord struct {
	Title   string
	Year    string
	Rating  string
	RatedBy string
	URL     string
}

// Record 是一条榜单条目的不可变值。
//
// 约束：
// - Year 保持 4 位数字字符串（与抓取格式一致，便于精确比较与区间比较）
// - Rating 保持十进制字符串；排序时才解析为数值
// - RatedBy 存整数，千分位只在展示时加（FormatCount），存储值永不带格式
type Record struct {
	Title   string
	Year    string
	Rating  string
	RatedBy int
	URL     string
}

// RecordFromRaw 校验并规范化一条原始记录。
func RecordFromRaw(raw RawRecord) (Record, error) {
	title := strings.Join(strings.Fields(raw.Title), " ")
	if title == "" {
		return Record{}, fmt.Errorf("title 为空")
	}
	year := strings.TrimSpace(raw.Year)
	if !ValidYear(year) {
		return Record{}, fmt.Errorf("%q 的 year 不是 4 位数字：%q", title, raw.Year)
	}
	rating := strings.TrimSpace(raw.Rating)
	if v, err := strconv.ParseFloat(rating, 64); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Record{}, fmt.Errorf("%q 的 rating 无效：%q", title, raw.Rating)
	}
	n, err := ParseCount(raw.RatedBy)
	if err != nil {
		return Record{}, fmt.Errorf("%q 的 rated_by 无效：%w", title, err)
	}
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return Record{}, fmt.Errorf("%q 的 url 为空", title)
	}
	return Record{Title: title, Year: year, Rating: rating, RatedBy: n, URL: url}, nil
}

// RatingValue 返回 Rating 的数值形式；Rating 已在 RecordFromRaw 校验过，解析失败记为 0。
func (r Record) RatingValue() float64 {
	v, _ := strconv.ParseFloat(r.Rating, 64)
	return v
}

// DisplayRatedBy 返回带千分位的 RatedBy（只用于展示/导出）。
func (r Record) DisplayRatedBy() string { return FormatCount(r.RatedBy) }

// ValidYear 判断 s 是否为 4 位 ASCII 数字。
func ValidYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseCount 解析可能带千分位逗号的非负整数，例如 "2,589,631"。
func ParseCount(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("计数为空")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("计数不是整数：%q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("计数不能为负：%d", n)
	}
	return n, nil
}

// FormatCount 从右往左每 3 位插入一个逗号：5 => "5"，20000 => "20,000"。
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
