package provider

import (
	"context"
	"net/http"

	"github.com/John-Robertt/imdbtop/internal/domain"
)

// Provider 把“榜单页面结构变化”限制在 provider 包内部；核心只依赖 RawRecord。
//
// 约束：
// - Fetch 不做缓存、不做重试（由 httpx / cache 层统一实现）
// - Parse 必须是纯函数：相同输入 => 相同输出
// - Parse 只负责还原原始字段；数量与格式校验由调用方完成
type Provider interface {
	Category() domain.Category
	Fetch(ctx context.Context, c *http.Client) (html []byte, pageURL string, err error)
	Parse(html []byte, pageURL string) ([]domain.RawRecord, error)
}
