// Package app 把一个类别的 Collection + Engine 绑定到抓取 provider 与导出 sink。
package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/imdbtop/internal/catalog"
	"github.com/John-Robertt/imdbtop/internal/domain"
	"github.com/John-Robertt/imdbtop/internal/infra/cache"
	"github.com/John-Robertt/imdbtop/internal/provider"
	"github.com/John-Robertt/imdbtop/internal/recommend"
)

// DefaultExpectedSize 是榜单固定条数。
const DefaultExpectedSize = 250

// Sink 是导出目标；CSV 实现见 export.CSVSink。
type Sink interface {
	Save(cat domain.Category, name string, recs []domain.Record) (path string, err error)
}

// Which 选择导出当前视图还是全量记录。
type Which string

const (
	WhichCurrent Which = "current"
	WhichFull    Which = "full"
)

type Options struct {
	// ExpectedSize 为 0 时使用 DefaultExpectedSize；条数不符即视为页面结构异常。
	ExpectedSize int
	// Cache 非 nil 时：在线抓取成功后写入缓存；Offline=true 时只从缓存读。
	Cache   *cache.Store
	Offline bool
	// Logger 为 nil 时不输出日志。
	Logger *zerolog.Logger
	// Rand 为 nil 时推荐器使用按时间播种的随机源。
	Rand *rand.Rand
}

// Controller 是一个类别的会话：由调用方显式构造并持有，不存在进程级单例。
// 非并发安全；交互层顺序调用。
type Controller struct {
	prov   provider.Provider
	client *http.Client
	sink   Sink
	opts   Options
	log    zerolog.Logger

	coll   *catalog.Collection
	engine *recommend.Engine
}

func New(p provider.Provider, c *http.Client, sink Sink, opts Options) *Controller {
	if opts.ExpectedSize <= 0 {
		opts.ExpectedSize = DefaultExpectedSize
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	coll := catalog.New()
	return &Controller{
		prov:   p,
		client: c,
		sink:   sink,
		opts:   opts,
		log:    log.With().Str("category", string(p.Category())).Logger(),
		coll:   coll,
		engine: recommend.New(coll, opts.Rand),
	}
}

func (c *Controller) Category() domain.Category { return c.prov.Category() }

// Fetch 抓取并解析榜单，校验后载入集合。
// 成功时过滤状态被覆盖，拒绝记录随新 Engine 一起清空；失败时集合保持原状。
func (c *Controller) Fetch(ctx context.Context) error {
	started := time.Now()
	cat := string(c.Category())

	html, pageURL, fromCache, err := c.load(ctx)
	if err != nil {
		return &ScrapeError{Category: cat, Stage: StageFetch, Err: err}
	}

	raws, err := c.prov.Parse(html, pageURL)
	if err != nil {
		return &ScrapeError{Category: cat, Stage: StageParse, Err: err}
	}
	if len(raws) != c.opts.ExpectedSize {
		return &ScrapeError{Category: cat, Stage: StageValidate, Err: fmt.Errorf("期望 %d 条记录，实际 %d 条（页面结构可能已变化）", c.opts.ExpectedSize, len(raws))}
	}

	recs := make([]domain.Record, 0, len(raws))
	for i, raw := range raws {
		r, err := domain.RecordFromRaw(raw)
		if err != nil {
			return &ScrapeError{Category: cat, Stage: StageValidate, Err: fmt.Errorf("第 %d 条：%w", i+1, err)}
		}
		recs = append(recs, r)
	}

	c.coll.Load(recs)
	c.engine = recommend.New(c.coll, c.opts.Rand)

	if !fromCache && c.opts.Cache != nil {
		if err := c.opts.Cache.WritePage(c.Category(), html); err != nil {
			// 缓存只服务于离线重跑，写失败不影响本次结果。
			c.log.Warn().Err(err).Msg("写入榜单缓存失败")
		}
	}

	c.log.Info().
		Int("records", len(recs)).
		Bool("from_cache", fromCache).
		Dur("elapsed", time.Since(started)).
		Msg("榜单已加载")
	return nil
}

func (c *Controller) load(ctx context.Context) (html []byte, pageURL string, fromCache bool, err error) {
	if c.opts.Offline {
		if c.opts.Cache == nil {
			return nil, "", false, fmt.Errorf("离线模式需要配置缓存目录")
		}
		b, ok, err := c.opts.Cache.ReadPage(c.Category())
		if err != nil {
			return nil, "", false, err
		}
		if !ok {
			path, _ := c.opts.Cache.PagePath(c.Category())
			return nil, "", false, fmt.Errorf("离线模式下缓存不存在：%s", path)
		}
		return b, "", true, nil
	}

	c.log.Debug().Msg("开始抓取榜单")
	b, u, err := c.prov.Fetch(ctx, c.client)
	if err != nil {
		return nil, "", false, err
	}
	return b, u, false, nil
}

func (c *Controller) FilterByYear(year string) error { return c.coll.FilterByYear(year) }

func (c *Controller) FilterByPeriod(start, end string) error {
	return c.coll.FilterByPeriod(start, end)
}

func (c *Controller) SortByRating() { c.coll.SortByRating() }

func (c *Controller) ClearFilters() { c.coll.Reset() }

func (c *Controller) View() []domain.Record { return c.coll.CurrentView() }

func (c *Controller) All() []domain.Record { return c.coll.FullSet() }

// Recommend 从当前视图随机推荐一条；ok=false 表示已无可推荐（Exhausted）。
func (c *Controller) Recommend() (domain.Record, bool) {
	r, st := c.engine.Recommend()
	if st == recommend.Exhausted {
		c.log.Info().Int("rejected", len(c.engine.Rejected())).Msg("没有更多推荐")
		return domain.Record{}, false
	}
	return r, true
}

// Reject 记录用户已看过该 title。
func (c *Controller) Reject(title string) error { return c.engine.Reject(title) }

var unsafeNameRE = regexp.MustCompile(`[^A-Za-z0-9]+`)

// SanitizeName 去掉 [A-Za-z0-9] 以外的所有字符。
func SanitizeName(name string) string {
	return unsafeNameRE.ReplaceAllString(name, "")
}

// Persist 把记录交给 sink。
// which=current 且当前视图非空时导出视图；否则（包括过滤到空）导出全量。
func (c *Controller) Persist(which Which, name string) (string, error) {
	if !c.coll.Loaded() {
		return "", ErrNotLoaded
	}
	safe := SanitizeName(name)
	if safe == "" {
		return "", ErrEmptyName
	}

	recs := c.coll.FullSet()
	used := WhichFull
	if which == WhichCurrent && !c.coll.IsFilteredToEmpty() {
		recs = c.coll.CurrentView()
		used = WhichCurrent
	}

	path, err := c.sink.Save(c.Category(), safe, recs)
	if err != nil {
		return "", err
	}
	c.log.Info().
		Str("path", path).
		Str("which", string(used)).
		Int("rows", len(recs)).
		Msg("已导出")
	return path, nil
}
