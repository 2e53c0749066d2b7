package datasource

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"Momentum/pkg/config"
	"Momentum/pkg/model"
)

// SinaAdapter 新浪财经数据适配器
// 列表接口分页返回，代码带sh/sz前缀需剥离
type SinaAdapter struct {
	listURL  string
	klineURL string
	pages    int
	client   *Client
}

// NewSinaAdapter 创建新浪财经适配器
func NewSinaAdapter(cfg *config.Config, client *Client) *SinaAdapter {
	return &SinaAdapter{
		listURL:  cfg.DataSources.Sina.ListURL,
		klineURL: cfg.DataSources.Sina.KlineURL,
		pages:    cfg.DataSources.Sina.Pages,
		client:   client,
	}
}

// StockList 分页获取沪深A股列表
func (s *SinaAdapter) StockList() ([]model.StockRow, error) {
	var rows []model.StockRow
	seen := make(map[string]bool)

	for _, node := range []string{"sh_a", "sz_a"} {
		market := "SH"
		if node == "sz_a" {
			market = "SZ"
		}

		for page := 1; page <= s.pages; page++ {
			params := url.Values{}
			params.Set("page", strconv.Itoa(page))
			params.Set("num", "80")
			params.Set("sort", "symbol")
			params.Set("asc", "1")
			params.Set("node", node)

			var records []map[string]interface{}
			if err := s.client.GetJSON(s.listURL, params, &records); err != nil {
				log.Printf("[新浪财经] 获取 %s 第 %d 页失败: %v\n", node, page, err)
				break
			}
			if len(records) == 0 {
				break
			}

			for _, record := range records {
				raw := fmt.Sprintf("%v", record["symbol"])
				if len(raw) <= 2 {
					continue
				}
				// 剥离sh/sz前缀
				symbol := raw[2:]
				if seen[symbol] {
					continue
				}
				seen[symbol] = true

				rows = append(rows, model.StockRow{
					Symbol:    symbol,
					Name:      fmt.Sprintf("%v", record["name"]),
					Market:    market,
					MarketCap: parseFloatPtr(record["mktcap"]),
					PERatio:   parseFloatPtr(record["pe"]),
					PBRatio:   parseFloatPtr(record["pb"]),
				})
			}
		}
	}

	return rows, nil
}

// Daily 获取日线数据，接口不支持日期参数，取回后按区间过滤
func (s *SinaAdapter) Daily(symbol string, start, end time.Time) ([]model.BarRow, error) {
	params := url.Values{}
	params.Set("symbol", exchangePrefix(symbol)+symbol)
	params.Set("scale", "240")
	params.Set("datalen", "500")

	var records []map[string]interface{}
	if err := s.client.GetJSON(s.klineURL, params, &records); err != nil {
		return nil, fmt.Errorf("获取日线数据失败 %s: %w", symbol, err)
	}

	rows := make([]model.BarRow, 0, len(records))
	for _, record := range records {
		tradeDate, err := parseDate(fmt.Sprintf("%v", record["day"]))
		if err != nil {
			continue
		}
		if tradeDate.Before(start) || tradeDate.After(end) {
			continue
		}
		rows = append(rows, model.BarRow{
			TradeDate: tradeDate,
			Open:      parseFloat(record["open"]),
			High:      parseFloat(record["high"]),
			Low:       parseFloat(record["low"]),
			Close:     parseFloat(record["close"]),
			Volume:    parseFloat(record["volume"]),
		})
	}

	return rows, nil
}
