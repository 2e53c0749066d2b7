package datasource

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"Momentum/pkg/config"
	"Momentum/pkg/model"
)

// TencentAdapter 腾讯财经数据适配器
// 行情接口返回"~"分隔的字符串，市值单位为亿，需换算为元
type TencentAdapter struct {
	quoteURL  string
	klineURL  string
	batchSize int
	client    *Client

	// 股票代码清单来源，获取失败时退回内置代码表
	listCodes func() ([]string, error)
}

// 代码清单接口不可用时的兜底股票池
var fallbackCodes = []string{
	// 沪市主要股票
	"600519", "600036", "601318", "600000", "600276", "600030", "600887",
	"600900", "600104", "600050", "600028", "601166", "600016", "601398",
	"601288", "601857", "600019", "600585", "601088", "600309", "601601",
	// 深市主要股票
	"000858", "000001", "000002", "002415", "000651", "000333", "002304",
	"000568", "000725", "002594", "000063", "002142", "000538", "002024",
}

// NewTencentAdapter 创建腾讯财经适配器
func NewTencentAdapter(cfg *config.Config, client *Client) *TencentAdapter {
	return &TencentAdapter{
		quoteURL:  cfg.DataSources.Tencent.QuoteURL,
		klineURL:  cfg.DataSources.Tencent.KlineURL,
		batchSize: cfg.DataSources.Tencent.BatchSize,
		client:    client,
	}
}

// SetCodeLister 设置股票代码清单来源
func (t *TencentAdapter) SetCodeLister(fn func() ([]string, error)) {
	t.listCodes = fn
}

// StockList 获取A股股票列表及市值、市盈率、市净率快照
func (t *TencentAdapter) StockList() ([]model.StockRow, error) {
	codes := fallbackCodes
	if t.listCodes != nil {
		listed, err := t.listCodes()
		if err != nil || len(listed) == 0 {
			log.Printf("[腾讯财经] 获取股票代码清单失败，使用内置代码表: %v\n", err)
		} else {
			codes = listed
		}
	}

	var rows []model.StockRow

	// 分批请求，避免单次URL过长
	for offset := 0; offset < len(codes); offset += t.batchSize {
		end := offset + t.batchSize
		if end > len(codes) {
			end = len(codes)
		}

		prefixed := make([]string, 0, end-offset)
		for _, code := range codes[offset:end] {
			prefixed = append(prefixed, exchangePrefix(code)+code)
		}

		body, err := t.client.Get(t.quoteURL+"/q="+strings.Join(prefixed, ","), nil)
		if err != nil {
			log.Printf("[腾讯财经] 批次请求失败: %v\n", err)
			continue
		}

		rows = append(rows, parseTencentQuotes(string(body))...)
	}

	return rows, nil
}

// parseTencentQuotes 解析腾讯行情字符串
// 格式: v_sh600519="1~贵州茅台~600519~...";
func parseTencentQuotes(content string) []model.StockRow {
	var rows []model.StockRow

	for _, line := range strings.Split(strings.TrimSpace(content), ";") {
		if !strings.Contains(line, "=") || strings.Contains(line, `""`) {
			continue
		}

		parts := strings.Split(strings.Trim(strings.SplitN(line, "=", 2)[1], "\"\n "), "~")
		if len(parts) < 47 {
			continue
		}

		symbol := parts[2]
		row := model.StockRow{
			Symbol: symbol,
			Name:   parts[1],
			Market: marketOf(symbol),
		}

		// parts[45]为总市值，单位亿，换算为元
		if mcap := parseFloatPtr(parts[45]); mcap != nil && *mcap > 0 {
			yuan := *mcap * 1e8
			row.MarketCap = &yuan
		}
		row.PERatio = parseFloatPtr(parts[41])
		row.PBRatio = parseFloatPtr(parts[46])
		if len(parts) > 51 && strings.TrimSpace(parts[51]) != "" {
			industry := strings.TrimSpace(parts[51])
			row.Industry = &industry
		}

		rows = append(rows, row)
	}

	return rows
}

// tencentKlineResp 腾讯日线接口响应
type tencentKlineResp struct {
	Code int                                   `json:"code"`
	Data map[string]map[string]json.RawMessage `json:"data"`
}

// Daily 获取前复权日线数据
func (t *TencentAdapter) Daily(symbol string, start, end time.Time) ([]model.BarRow, error) {
	secKey := exchangePrefix(symbol) + symbol

	params := url.Values{}
	params.Set("param", fmt.Sprintf("%s,day,%s,%s,640,qfq",
		secKey, start.Format("2006-01-02"), end.Format("2006-01-02")))
	params.Set("_appName", "android")
	params.Set("_appver", "8.6.0")

	var resp tencentKlineResp
	if err := t.client.GetJSON(t.klineURL, params, &resp); err != nil {
		return nil, fmt.Errorf("获取日线数据失败 %s: %w", symbol, err)
	}

	sec, ok := resp.Data[secKey]
	if !ok {
		return nil, fmt.Errorf("响应中缺少股票数据: %s", symbol)
	}

	// 前复权数据在qfqday字段，部分标的只有day字段
	raw, ok := sec["qfqday"]
	if !ok {
		raw, ok = sec["day"]
	}
	if !ok {
		return nil, fmt.Errorf("响应中缺少日线数据: %s", symbol)
	}

	var klines [][]interface{}
	if err := json.Unmarshal(raw, &klines); err != nil {
		return nil, fmt.Errorf("解析日线数据失败 %s: %w", symbol, err)
	}

	rows := make([]model.BarRow, 0, len(klines))
	for _, kline := range klines {
		if len(kline) < 6 {
			continue
		}
		tradeDate, err := parseDate(fmt.Sprintf("%v", kline[0]))
		if err != nil {
			continue
		}
		rows = append(rows, model.BarRow{
			TradeDate: tradeDate,
			Open:      parseFloat(kline[1]),
			Close:     parseFloat(kline[2]),
			High:      parseFloat(kline[3]),
			Low:       parseFloat(kline[4]),
			Volume:    parseFloat(kline[5]),
		})
	}

	return rows, nil
}
