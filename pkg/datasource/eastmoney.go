package datasource

import (
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Momentum/pkg/config"
	"Momentum/pkg/model"
)

// EastMoneyAdapter 东方财富直接API适配器
type EastMoneyAdapter struct {
	listURL  string
	klineURL string
	client   *Client
}

// NewEastMoneyAdapter 创建东方财富适配器
func NewEastMoneyAdapter(cfg *config.Config, client *Client) *EastMoneyAdapter {
	return &EastMoneyAdapter{
		listURL:  cfg.DataSources.EastMoney.ListURL,
		klineURL: cfg.DataSources.EastMoney.KlineURL,
		client:   client,
	}
}

// eastMoneyListResp 股票列表接口响应
type eastMoneyListResp struct {
	Data *struct {
		Diff []map[string]interface{} `json:"diff"`
	} `json:"data"`
}

// StockList 分沪深两市获取股票列表
func (e *EastMoneyAdapter) StockList() ([]model.StockRow, error) {
	markets := []struct {
		name string
		fs   string
	}{
		{"SH", "m:1+t:2,m:1+t:23"},
		{"SZ", "m:0+t:6,m:0+t:80"},
	}

	var rows []model.StockRow

	for _, market := range markets {
		params := url.Values{}
		params.Set("pn", "1")
		params.Set("pz", "5000")
		params.Set("po", "1")
		params.Set("np", "1")
		params.Set("fltt", "2")
		params.Set("invt", "2")
		params.Set("fid", "f3")
		params.Set("fs", market.fs)
		params.Set("fields", "f9,f12,f14,f20,f23")

		var resp eastMoneyListResp
		if err := e.client.GetJSON(e.listURL, params, &resp); err != nil {
			log.Printf("[东方财富] %s市场获取失败: %v\n", market.name, err)
			continue
		}
		if resp.Data == nil {
			continue
		}

		for _, item := range resp.Data.Diff {
			symbol := fmt.Sprintf("%v", item["f12"])
			if symbol == "" || symbol == "<nil>" {
				continue
			}
			rows = append(rows, model.StockRow{
				Symbol:    symbol,
				Name:      fmt.Sprintf("%v", item["f14"]),
				Market:    market.name,
				MarketCap: parseFloatPtr(item["f20"]),
				PERatio:   parseFloatPtr(item["f9"]),
				PBRatio:   parseFloatPtr(item["f23"]),
			})
		}
	}

	return rows, nil
}

// eastMoneyKlineResp 日线接口响应
type eastMoneyKlineResp struct {
	Data *struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// Daily 获取前复权日线数据
// kline为逗号分隔字符串: 日期,开盘,收盘,最高,最低,成交量,成交额,...
func (e *EastMoneyAdapter) Daily(symbol string, start, end time.Time) ([]model.BarRow, error) {
	marketCode := "0"
	if strings.HasPrefix(symbol, "6") {
		marketCode = "1"
	}

	params := url.Values{}
	params.Set("secid", marketCode+"."+symbol)
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")
	params.Set("klt", "101")
	params.Set("fqt", "1")
	params.Set("beg", start.Format("20060102"))
	params.Set("end", end.Format("20060102"))

	var resp eastMoneyKlineResp
	if err := e.client.GetJSON(e.klineURL, params, &resp); err != nil {
		return nil, fmt.Errorf("获取日线数据失败 %s: %w", symbol, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("响应中缺少日线数据: %s", symbol)
	}

	rows := make([]model.BarRow, 0, len(resp.Data.Klines))
	for _, kline := range resp.Data.Klines {
		row, err := parseEastMoneyKline(kline)
		if err != nil {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// parseEastMoneyKline 解析单条kline字符串
func parseEastMoneyKline(kline string) (model.BarRow, error) {
	parts := strings.Split(kline, ",")
	if len(parts) < 7 {
		return model.BarRow{}, fmt.Errorf("kline字段不足: %s", kline)
	}

	tradeDate, err := parseDate(parts[0])
	if err != nil {
		return model.BarRow{}, err
	}

	open, _ := strconv.ParseFloat(parts[1], 64)
	closePrice, _ := strconv.ParseFloat(parts[2], 64)
	high, _ := strconv.ParseFloat(parts[3], 64)
	low, _ := strconv.ParseFloat(parts[4], 64)
	volume, _ := strconv.ParseFloat(parts[5], 64)
	amount, _ := strconv.ParseFloat(parts[6], 64)

	return model.BarRow{
		TradeDate: tradeDate,
		Open:      open,
		Close:     closePrice,
		High:      high,
		Low:       low,
		Volume:    volume,
		Amount:    &amount,
	}, nil
}
