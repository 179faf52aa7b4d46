package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/John-Robertt/imdbtop/internal/app"
	"github.com/John-Robertt/imdbtop/internal/config"
	"github.com/John-Robertt/imdbtop/internal/domain"
	"github.com/John-Robertt/imdbtop/internal/export"
	"github.com/John-Robertt/imdbtop/internal/infra/cache"
	"github.com/John-Robertt/imdbtop/internal/infra/httpx"
	"github.com/John-Robertt/imdbtop/internal/logging"
	"github.com/John-Robertt/imdbtop/internal/provider"
	"github.com/John-Robertt/imdbtop/internal/provider/imdb"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs(ra))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	log := logging.New(logging.Config{Level: eff.LogLevel, Format: eff.LogFormat})

	client, err := httpx.NewClient(eff.ProxyURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "proxy.url 无效：%v\n", err)
		return 1
	}

	reg, err := provider.NewRegistry(
		imdb.Provider{Cat: domain.CategoryMovies, BaseURL: eff.BaseURL},
		imdb.Provider{Cat: domain.CategoryShows, BaseURL: eff.BaseURL},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化 provider registry 失败：%v\n", err)
		return 1
	}

	opts := app.Options{
		ExpectedSize: eff.ExpectedSize,
		Offline:      eff.Offline,
		Logger:       &log,
	}
	if eff.UseCache {
		// 离线模式只读缓存，避免覆盖用户手动放进去的页面。
		store := cache.New(eff.CacheDir, eff.Offline)
		opts.Cache = &store
	}
	sink := export.CSVSink{Dir: eff.OutDir}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := newSession(os.Stdin, os.Stdout)
	cat := eff.Category
	if cat == "" {
		cat, err = s.chooseCategory()
		if err != nil {
			return exitForInput(err)
		}
	}

	p, ok := reg.Get(cat)
	if !ok {
		fmt.Fprintf(os.Stderr, "未注册的类别：%q\n", cat)
		return 1
	}
	ctrl := app.New(p, client, sink, opts)

	if err := ctrl.Fetch(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "抓取失败：%v\n", err)
		var se *provider.HTTPStatusError
		if errors.As(err, &se) && se.Temporary() {
			fmt.Fprintln(os.Stderr, "站点暂时不可用，请稍后重试；或在 imdbtop.json 中配置 proxy.url。")
		}
		if !eff.Offline && eff.UseCache {
			fmt.Fprintf(os.Stderr, "若之前成功抓取过，可用 --offline 解析 %s 下的缓存。\n", eff.CacheDir)
		}
		return 1
	}

	if err := s.run(ctrl); err != nil {
		return exitForInput(err)
	}
	return 0
}

// exitForInput：stdin 结束视为用户主动退出（不保存）；其他错误（读输入/保存失败）返回 1。
func exitForInput(err error) int {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, "输入已结束，未保存。")
		return 0
	}
	fmt.Fprintf(os.Stderr, "失败：%v\n", err)
	return 1
}

type runArgs struct {
	Category    string
	CategorySet bool

	Offline    bool
	OfflineSet bool

	OutDir    string
	OutDirSet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--category":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("--category 需要一个值")
			}
			i++
			ra.Category = args[i]
			ra.CategorySet = true
		case strings.HasPrefix(a, "--category="):
			ra.Category = strings.TrimPrefix(a, "--category=")
			ra.CategorySet = true
		case a == "--out":
			if i+1 >= len(args) {
				return runArgs{}, fmt.Errorf("--out 需要一个值")
			}
			i++
			ra.OutDir = args[i]
			ra.OutDirSet = true
		case strings.HasPrefix(a, "--out="):
			ra.OutDir = strings.TrimPrefix(a, "--out=")
			ra.OutDirSet = true
		case a == "--offline":
			ra.Offline = true
			ra.OfflineSet = true
		case strings.HasPrefix(a, "--offline="):
			v := strings.TrimPrefix(a, "--offline=")
			switch v {
			case "true":
				ra.Offline = true
			case "false":
				ra.Offline = false
			default:
				return runArgs{}, fmt.Errorf("--offline 只能是 true 或 false，实际是 %q", v)
			}
			ra.OfflineSet = true
		default:
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		}
	}

	if ra.CategorySet {
		if _, err := domain.ParseCategory(ra.Category); err != nil {
			return runArgs{}, fmt.Errorf("--category：%w", err)
		}
	}
	if ra.OutDirSet && strings.TrimSpace(ra.OutDir) == "" {
		return runArgs{}, fmt.Errorf("--out 不能为空")
	}

	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  imdbtop run [--category movies|shows] [--offline[=true|false]] [--out DIR]

命令：
  run    抓取 IMDb Top 250 榜单并进入交互菜单（过滤/排序/推荐/导出 CSV）

使用 "imdbtop run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  imdbtop run [--category movies|shows] [--offline[=true|false]] [--out DIR]

参数：
  --category  榜单类别：movies|shows（未指定则读配置文件；仍未指定则交互询问）
  --offline   不访问网络，解析 cache_dir 下上次抓取的页面
  --out       CSV 导出目录（默认 saved_content）
  -h, --help  显示帮助
`)
}
