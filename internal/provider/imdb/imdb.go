package imdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/imdbtop/internal/domain"
	providerx "github.com/John-Robertt/imdbtop/internal/provider"
)

// DefaultBaseURL 是 IMDb 站点根地址；详情页 URL = BaseURL + 榜单里的相对 href。
const DefaultBaseURL = "https://www.imdb.com"

// Provider 实现 IMDb Top 250 榜单页（电影 /chart/top/，剧集 /chart/toptv/）的抓取与解析。
type Provider struct {
	Cat domain.Category
	// BaseURL 为空时使用 DefaultBaseURL；测试里指向 httptest server。
	BaseURL string
}

func (p Provider) Category() domain.Category { return p.Cat }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

// ChartURL 返回该类别的榜单页地址。
func (p Provider) ChartURL() (string, error) {
	switch p.Cat {
	case domain.CategoryMovies:
		return p.baseURL() + "/chart/top/", nil
	case domain.CategoryShows:
		return p.baseURL() + "/chart/toptv/", nil
	default:
		return "", fmt.Errorf("未知类别：%q", p.Cat)
	}
}

func (p Provider) Fetch(ctx context.Context, c *http.Client) ([]byte, string, error) {
	if c == nil {
		return nil, "", errors.New("http client 不能为空")
	}
	u, err := p.ChartURL()
	if err != nil {
		return nil, "", err
	}
	b, err := fetchURL(ctx, c, u)
	return b, u, err
}

// 标题单元格文本形如 "1. The Shawshank Redemption (1994)"（空白已归一）。
var titleCellRE = regexp.MustCompile(`^(?:\d+\.\s*)?(.+?)\s*\((\d{4})\)$`)

// Parse 把榜单页 HTML 解析为原始记录，保持页面顺序。
//
// 页面结构：
// - td.titleColumn：排名 + 标题 + (年份)，a[href] 为相对详情页链接
// - td.ratingColumn.imdbRating：文本为评分，strong[title] 为 "9.2 based on 2,589,631 user ratings"
func (p Provider) Parse(html []byte, pageURL string) ([]domain.RawRecord, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	// 相对 href 以榜单页地址为基准解析；pageURL 为空（例如离线缓存）时退回站点根。
	base := strings.TrimSpace(pageURL)
	if base == "" {
		base = p.baseURL() + "/"
	}

	var (
		out  []domain.RawRecord
		perr error
	)
	doc.Find("td.titleColumn").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			perr = fmt.Errorf("第 %d 行缺少详情页链接", i+1)
			return false
		}
		m := titleCellRE.FindStringSubmatch(normSpace(s.Text()))
		if m == nil {
			perr = fmt.Errorf("第 %d 行标题格式无法识别：%q", i+1, normSpace(s.Text()))
			return false
		}
		out = append(out, domain.RawRecord{
			Title: m[1],
			Year:  m[2],
			URL:   resolveURL(base, href),
		})
		return true
	})
	if perr != nil {
		return nil, perr
	}

	ratings := doc.Find("td.ratingColumn.imdbRating")
	if ratings.Length() != len(out) {
		return nil, fmt.Errorf("标题数与评分数不一致：%d != %d", len(out), ratings.Length())
	}
	ratings.EachWithBreak(func(i int, s *goquery.Selection) bool {
		out[i].Rating = normSpace(s.Text())
		tip, _ := s.Find("strong").First().Attr("title")
		n, ok := ratedByFromTip(tip)
		if !ok {
			perr = fmt.Errorf("第 %d 行评分人数无法识别：%q", i+1, tip)
			return false
		}
		out[i].RatedBy = n
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return out, nil
}

// ratedByFromTip 从 "9.2 based on 2,589,631 user ratings" 取出 "2,589,631"。
func ratedByFromTip(tip string) (string, bool) {
	_, rest, ok := strings.Cut(normSpace(tip), "based on ")
	if !ok {
		return "", false
	}
	n, _, _ := strings.Cut(rest, " ")
	if n == "" {
		return "", false
	}
	return n, true
}

func fetchURL(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	// 榜单标题会按 Accept-Language 本地化；固定英文以保证输出稳定。
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &providerx.HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	return io.ReadAll(resp.Body)
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
