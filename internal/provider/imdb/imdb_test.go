package imdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/imdbtop/internal/domain"
	providerx "github.com/John-Robertt/imdbtop/internal/provider"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", "chart.html"))
	if err != nil {
		t.Fatalf("读取 fixture 失败：%v", err)
	}
	return b
}

func TestParse_Fixture(t *testing.T) {
	p := Provider{Cat: domain.CategoryMovies}
	got, err := p.Parse(readFixture(t), "https://www.imdb.com/chart/top/")
	if err != nil {
		t.Fatalf("Parse 失败：%v", err)
	}

	want := []domain.RawRecord{
		{Title: "The Shawshank Redemption", Year: "1994", Rating: "9.2", RatedBy: "2,589,631", URL: "https://www.imdb.com/title/tt0111161/?pf_rm=1"},
		{Title: "The Godfather", Year: "1972", Rating: "9.2", RatedBy: "1,791,041", URL: "https://www.imdb.com/title/tt0068646/"},
		{Title: "8½ (Otto e mezzo)", Year: "1963", Rating: "8.0", RatedBy: "999", URL: "https://www.imdb.com/title/tt0111395/"},
	}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 条，实际 %d 条：%+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("第 %d 条不一致：\n期望 %+v\n实际 %+v", i, want[i], got[i])
		}
	}
}

func TestParse_EmptyPageURLFallsBackToBase(t *testing.T) {
	p := Provider{Cat: domain.CategoryShows, BaseURL: "https://mirror.example/"}
	got, err := p.Parse(readFixture(t), "")
	if err != nil {
		t.Fatalf("Parse 失败：%v", err)
	}
	if got[1].URL != "https://mirror.example/title/tt0068646/" {
		t.Fatalf("URL 未按 BaseURL 解析：%q", got[1].URL)
	}
}

func TestParse_Malformed(t *testing.T) {
	p := Provider{Cat: domain.CategoryMovies}
	cases := map[string]string{
		"empty":         ``,
		"no_href":       `<table><tr><td class="titleColumn">1. X (2000)</td><td class="ratingColumn imdbRating"><strong title="8 based on 1 user ratings">8</strong></td></tr></table>`,
		"no_year":       `<table><tr><td class="titleColumn">1. <a href="/t/">X</a></td><td class="ratingColumn imdbRating"><strong title="8 based on 1 user ratings">8</strong></td></tr></table>`,
		"count_differs": `<table><tr><td class="titleColumn">1. <a href="/t/">X</a> (2000)</td></tr></table>`,
		"no_tip":        `<table><tr><td class="titleColumn">1. <a href="/t/">X</a> (2000)</td><td class="ratingColumn imdbRating"><strong>8</strong></td></tr></table>`,
	}
	for name, html := range cases {
		if _, err := p.Parse([]byte(html), "https://www.imdb.com/chart/top/"); err == nil {
			t.Fatalf("%s：期望解析失败", name)
		}
	}
}

func TestParse_UnrelatedPageYieldsNoRecords(t *testing.T) {
	p := Provider{Cat: domain.CategoryMovies}
	got, err := p.Parse([]byte(`<html><body><div class="ipc-page">new layout</div></body></html>`), "")
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(got) != 0 {
		t.Fatalf("期望 0 条，实际 %d", len(got))
	}
}

func TestChartURL(t *testing.T) {
	u, _ := Provider{Cat: domain.CategoryMovies}.ChartURL()
	if u != "https://www.imdb.com/chart/top/" {
		t.Fatalf("movies 地址不符合预期：%q", u)
	}
	u, _ = Provider{Cat: domain.CategoryShows}.ChartURL()
	if u != "https://www.imdb.com/chart/toptv/" {
		t.Fatalf("shows 地址不符合预期：%q", u)
	}
	if _, err := (Provider{Cat: "books"}).ChartURL(); err == nil {
		t.Fatalf("期望未知类别报错")
	}
}

func TestFetch_HTTPServer(t *testing.T) {
	page := readFixture(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/chart/toptv/":
			if r.Header.Get("Accept-Language") == "" {
				t.Errorf("期望设置 Accept-Language")
			}
			_, _ = w.Write(page)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := Provider{Cat: domain.CategoryShows, BaseURL: srv.URL}
	b, pageURL, err := p.Fetch(context.Background(), srv.Client())
	if err != nil {
		t.Fatalf("Fetch 失败：%v", err)
	}
	if pageURL != srv.URL+"/chart/toptv/" {
		t.Fatalf("pageURL 不符合预期：%q", pageURL)
	}
	if string(b) != string(page) {
		t.Fatalf("返回内容与 fixture 不一致")
	}

	_, _, err = Provider{Cat: domain.CategoryMovies, BaseURL: srv.URL}.Fetch(context.Background(), srv.Client())
	var se *providerx.HTTPStatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("期望 HTTP 404 错误，实际：%v", err)
	}

	if _, _, err := p.Fetch(context.Background(), nil); err == nil {
		t.Fatalf("期望 nil client 报错")
	}
}
