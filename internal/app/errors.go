package app

import (
	"errors"
	"fmt"
)

const (
	StageFetch    = "fetch"
	StageParse    = "parse"
	StageValidate = "validate"
)

var (
	// ErrNotLoaded 表示还没有成功 Fetch 过（没有可导出的数据）。
	ErrNotLoaded = errors.New("尚未加载榜单数据")
	// ErrEmptyName 表示导出文件名清洗后为空（只允许 [A-Za-z0-9]）。
	ErrEmptyName = errors.New("文件名清洗后为空：只允许字母与数字")
)

// ScrapeError 表示一次抓取失败（页面拿不到、结构不对、字段不合法或条数不对）。
// 该错误对本次 Fetch 是致命的：集合保持原状，由调用方决定是否重试。
type ScrapeError struct {
	Category string
	Stage    string // fetch / parse / validate
	Err      error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape category=%s stage=%s: %v", e.Category, e.Stage, e.Err)
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// IsScrapeError 判断 err 是否为 ScrapeError，并返回其 stage。
func IsScrapeError(err error) (stage string, ok bool) {
	var e *ScrapeError
	if errors.As(err, &e) {
		return e.Stage, true
	}
	return "", false
}
