package datasource

import (
	"sort"
	"time"

	"Momentum/pkg/config"
	"Momentum/pkg/model"
)

// Source 数据源描述
// 能力以函数字段表示，nil表示该数据源不提供此能力
// Priority数值越小优先级越高
type Source struct {
	Key      string
	Name     string
	Priority int

	StockList  func() ([]model.StockRow, error)
	Daily      func(symbol string, start, end time.Time) ([]model.BarRow, error)
	Financials func(symbol string) ([]model.FinRow, error)
}

// DefaultSources 构建全部数据源配置表
// 优先级: 腾讯财经 > AKShare > 东方财富 > 新浪财经
func DefaultSources(cfg *config.Config, client *Client) []*Source {
	akshare := NewAKShareAdapter(cfg.DataSources.AKShare.BaseURL, client)
	tencent := NewTencentAdapter(cfg, client)
	// 腾讯行情接口按代码批量查询，代码清单从AKShare侧获取
	tencent.SetCodeLister(akshare.CodeList)
	eastmoney := NewEastMoneyAdapter(cfg, client)
	sina := NewSinaAdapter(cfg, client)

	return []*Source{
		{
			Key:       "tencent",
			Name:      "腾讯财经",
			Priority:  1,
			StockList: tencent.StockList,
			Daily:     tencent.Daily,
		},
		{
			Key:        "akshare",
			Name:       "AKShare (东方财富)",
			Priority:   2,
			StockList:  akshare.StockList,
			Daily:      akshare.Daily,
			Financials: akshare.Financials,
		},
		{
			Key:       "eastmoney",
			Name:      "东方财富直接API",
			Priority:  3,
			StockList: eastmoney.StockList,
			Daily:     eastmoney.Daily,
		},
		{
			Key:       "sina",
			Name:      "新浪财经",
			Priority:  4,
			StockList: sina.StockList,
			Daily:     sina.Daily,
		},
	}
}

// SortByPriority 按优先级升序排序，返回新切片，不修改入参
func SortByPriority(sources []*Source) []*Source {
	sorted := make([]*Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}
