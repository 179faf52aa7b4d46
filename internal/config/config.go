package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/John-Robertt/imdbtop/internal/domain"
)

// FileName 是工作目录下的可选配置文件名。
const FileName = "imdbtop.json"

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultOutDir       = "saved_content"
	DefaultCacheDir     = "cache"
	DefaultExpectedSize = 250
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
)

// CLIArgs 保留“是否显式指定”的信息，保证 --offline=false 能覆盖配置中的 offline=true。
type CLIArgs struct {
	Category    string
	CategorySet bool

	Offline    bool
	OfflineSet bool

	OutDir    string
	OutDirSet bool
}

// FileConfig 对应 imdbtop.json 的解析结构；全部字段可选。
type FileConfig struct {
	Category     string       `json:"category"`
	BaseURL      string       `json:"base_url"`
	OutDir       string       `json:"out_dir"`
	CacheDir     string       `json:"cache_dir"`
	UseCache     *bool        `json:"use_cache"`
	Offline      *bool        `json:"offline"`
	Proxy        *ProxyConfig `json:"proxy"`
	ExpectedSize int          `json:"expected_size"`
	LogLevel     string       `json:"log_level"`
	LogFormat    string       `json:"log_format"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置。
type EffectiveConfig struct {
	// Category 为空表示由交互层询问用户。
	Category domain.Category

	BaseURL  string
	OutDir   string
	CacheDir string
	UseCache bool
	Offline  bool
	ProxyURL string

	ExpectedSize int

	LogLevel  string
	LogFormat string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 <cwd>/imdbtop.json（可选），然后与 CLI 参数合并。
//
// 覆盖优先级（固定）：
// - category / offline / out_dir：CLI > config > 默认
// - 其他字段：仅由 config 控制
// 相对路径（out_dir/cache_dir）以 cwd 为基准转成绝对路径。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	cfgPath := filepath.Join(cwdAbs, FileName)

	fc, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff, err := merge(cwdAbs, cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return eff, nil
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	var cat domain.Category
	rawCat := strings.TrimSpace(fc.Category)
	if cli.CategorySet {
		rawCat = cli.Category
	}
	if cli.CategorySet || rawCat != "" {
		c, err := domain.ParseCategory(rawCat)
		if err != nil {
			return EffectiveConfig{}, err
		}
		cat = c
	}

	offline := false
	if cli.OfflineSet {
		offline = cli.Offline
	} else if fc.Offline != nil {
		offline = *fc.Offline
	}

	useCache := true
	if fc.UseCache != nil {
		useCache = *fc.UseCache
	}
	if offline && !useCache {
		return EffectiveConfig{}, fmt.Errorf("offline=true 但 use_cache=false")
	}

	outDir := DefaultOutDir
	if cli.OutDirSet {
		outDir = cli.OutDir
	} else if strings.TrimSpace(fc.OutDir) != "" {
		outDir = fc.OutDir
	}
	if strings.TrimSpace(outDir) == "" {
		return EffectiveConfig{}, fmt.Errorf("out_dir 不能为空")
	}

	cacheDir := DefaultCacheDir
	if strings.TrimSpace(fc.CacheDir) != "" {
		cacheDir = fc.CacheDir
	}

	baseURL := strings.TrimRight(strings.TrimSpace(fc.BaseURL), "/")
	if baseURL != "" {
		if err := validateHTTPURL(baseURL); err != nil {
			return EffectiveConfig{}, fmt.Errorf("base_url 无效：%w", err)
		}
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%w", err)
		}
	}

	size := fc.ExpectedSize
	if size == 0 {
		size = DefaultExpectedSize
	}
	if size < 0 {
		return EffectiveConfig{}, fmt.Errorf("expected_size 不能为负：%d", size)
	}

	logLevel := strings.TrimSpace(fc.LogLevel)
	if logLevel == "" {
		logLevel = DefaultLogLevel
	}
	logFormat := strings.ToLower(strings.TrimSpace(fc.LogFormat))
	switch logFormat {
	case "":
		logFormat = DefaultLogFormat
	case "console", "json":
	default:
		return EffectiveConfig{}, fmt.Errorf("log_format 只能是 console 或 json，实际是 %q", fc.LogFormat)
	}

	return EffectiveConfig{
		Category:     cat,
		BaseURL:      baseURL,
		OutDir:       absCleanFrom(cwdAbs, outDir),
		CacheDir:     absCleanFrom(cwdAbs, cacheDir),
		UseCache:     useCache,
		Offline:      offline,
		ProxyURL:     proxyURL,
		ExpectedSize: size,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
	}, nil
}

func validateHTTPURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("必须是 http/https：%q", s)
	}
	if u.Host == "" {
		return fmt.Errorf("缺少 host：%q", s)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件；文件不存在时返回零值配置。
func readFileConfig(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, err
	}
	var fc FileConfig
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}
