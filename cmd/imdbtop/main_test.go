package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRunArgs(t *testing.T) {
	ra, err := parseRunArgs([]string{"--category", "shows", "--offline", "--out=exports"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ra.Category != "shows" || !ra.CategorySet {
		t.Fatalf("category 解析不符合预期：%+v", ra)
	}
	if !ra.Offline || !ra.OfflineSet {
		t.Fatalf("offline 解析不符合预期：%+v", ra)
	}
	if ra.OutDir != "exports" || !ra.OutDirSet {
		t.Fatalf("out 解析不符合预期：%+v", ra)
	}

	ra, err = parseRunArgs([]string{"--offline=false", "--category=movies"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if ra.Offline || !ra.OfflineSet {
		t.Fatalf("--offline=false 应显式关闭：%+v", ra)
	}
}

func TestParseRunArgs_Invalid(t *testing.T) {
	cases := [][]string{
		{"--category"},
		{"--category", "books"},
		{"--offline=yes"},
		{"--out"},
		{"--out="},
		{"--bogus"},
		{"positional"},
	}
	for _, args := range cases {
		if _, err := parseRunArgs(args); err == nil {
			t.Fatalf("期望参数错误：%v", args)
		}
	}
}

func TestCLI_OfflineRun_WritesCSV(t *testing.T) {
	// 锁定端到端契约：离线解析缓存页 => 交互菜单 => saved_content/<name>.csv。
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("读取 cwd 失败：%v", err)
	}
	repoRoot := filepath.Clean(filepath.Join(wd, "..", ".."))

	work := t.TempDir()
	bin := filepath.Join(work, "imdbtop")
	build := exec.Command("go", "build", "-o", bin, "./cmd/imdbtop")
	build.Dir = repoRoot
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("构建失败：%v\n%s", err, out)
	}

	fixture, err := os.ReadFile(filepath.Join(repoRoot, "internal", "provider", "imdb", "testdata", "chart.html"))
	if err != nil {
		t.Fatalf("读取 fixture 失败：%v", err)
	}
	if err := os.MkdirAll(filepath.Join(work, "cache"), 0o755); err != nil {
		t.Fatalf("创建 cache 目录失败：%v", err)
	}
	if err := os.WriteFile(filepath.Join(work, "cache", "movies.html"), fixture, 0o644); err != nil {
		t.Fatalf("写入缓存失败：%v", err)
	}
	cfg := `{"expected_size":3,"log_format":"json"}`
	if err := os.WriteFile(filepath.Join(work, "imdbtop.json"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("写入配置失败：%v", err)
	}

	cmd := exec.Command(bin, "run", "--category", "movies", "--offline")
	cmd.Dir = work
	cmd.Stdin = strings.NewReader("2\n1970\n2000\n3\n0\nclassics\n")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("命令执行失败：%v\nstderr=%s\nstdout=%s", err, stderr.String(), stdout.String())
	}

	b, err := os.ReadFile(filepath.Join(work, "saved_content", "classics.csv"))
	if err != nil {
		t.Fatalf("读取导出文件失败：%v\nstdout=%s", err, stdout.String())
	}
	want := "Index,Movie,Year,Rating,Rated by,Movie Url\n" +
		"1,The Shawshank Redemption,1994,9.2,\"2,589,631\",https://www.imdb.com/title/tt0111161/?pf_rm=1\n" +
		"2,The Godfather,1972,9.2,\"1,791,041\",https://www.imdb.com/title/tt0068646/\n"
	if string(b) != want {
		t.Fatalf("CSV 内容不一致：\n期望 %q\n实际 %q", want, string(b))
	}

	// 日志只走 stderr。
	if strings.Contains(stdout.String(), `"level"`) {
		t.Fatalf("stdout 不应包含日志：%q", stdout.String())
	}
	if !strings.Contains(stderr.String(), `"from_cache":true`) {
		t.Fatalf("stderr 缺少加载日志：%q", stderr.String())
	}
}
