package datasource

import (
	"fmt"
	"net/url"
	"time"

	"Momentum/pkg/model"
)

// AKShareAdapter AKShare数据适配器
// 通过aksharetools HTTP服务访问，响应为中文列名的对象数组
type AKShareAdapter struct {
	baseURL string
	client  *Client
}

// NewAKShareAdapter 创建新的AKShare数据适配器
func NewAKShareAdapter(baseURL string, client *Client) *AKShareAdapter {
	return &AKShareAdapter{
		baseURL: baseURL,
		client:  client,
	}
}

// StockList 获取A股股票列表（含市值、市盈率、市净率）
func (a *AKShareAdapter) StockList() ([]model.StockRow, error) {
	var records []map[string]interface{}
	if err := a.client.GetJSON(a.baseURL+"/api/public/stock_zh_a_spot_em", nil, &records); err != nil {
		return nil, fmt.Errorf("获取股票列表失败: %w", err)
	}

	rows := make([]model.StockRow, 0, len(records))
	for _, record := range records {
		symbol := fmt.Sprintf("%v", record["代码"])
		if symbol == "" || symbol == "<nil>" {
			continue
		}
		rows = append(rows, model.StockRow{
			Symbol:    symbol,
			Name:      fmt.Sprintf("%v", record["名称"]),
			Market:    marketOf(symbol),
			MarketCap: parseFloatPtr(record["总市值"]),
			PERatio:   parseFloatPtr(record["市盈率-动态"]),
			PBRatio:   parseFloatPtr(record["市净率"]),
		})
	}

	return rows, nil
}

// Daily 获取前复权日线数据
func (a *AKShareAdapter) Daily(symbol string, start, end time.Time) ([]model.BarRow, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("period", "daily")
	params.Set("start_date", start.Format("20060102"))
	params.Set("end_date", end.Format("20060102"))
	params.Set("adjust", "qfq")

	var records []map[string]interface{}
	if err := a.client.GetJSON(a.baseURL+"/api/public/stock_zh_a_hist", params, &records); err != nil {
		return nil, fmt.Errorf("获取日线数据失败 %s: %w", symbol, err)
	}

	rows := make([]model.BarRow, 0, len(records))
	for _, record := range records {
		tradeDate, err := parseDate(fmt.Sprintf("%v", record["日期"]))
		if err != nil {
			continue
		}
		row := model.BarRow{
			TradeDate: tradeDate,
			Open:      parseFloat(record["开盘"]),
			High:      parseFloat(record["最高"]),
			Low:       parseFloat(record["最低"]),
			Close:     parseFloat(record["收盘"]),
			Volume:    parseFloat(record["成交量"]),
		}
		row.Amount = parseFloatPtr(record["成交额"])
		rows = append(rows, row)
	}

	return rows, nil
}

// Financials 获取财务分析指标
func (a *AKShareAdapter) Financials(symbol string) ([]model.FinRow, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var records []map[string]interface{}
	if err := a.client.GetJSON(a.baseURL+"/api/public/stock_financial_analysis_indicator", params, &records); err != nil {
		return nil, fmt.Errorf("获取财务数据失败 %s: %w", symbol, err)
	}

	rows := make([]model.FinRow, 0, len(records))
	for _, record := range records {
		reportDate, err := parseDate(fmt.Sprintf("%v", record["日期"]))
		if err != nil {
			continue
		}
		rows = append(rows, model.FinRow{
			ReportDate: reportDate,
			Revenue:    parseFloatPtr(record["主营业务收入"]),
			NetProfit:  parseFloatPtr(record["净利润"]),
			ROE:        parseFloatPtr(record["净资产收益率(%)"]),
			DebtRatio:  parseFloatPtr(record["资产负债率(%)"]),
		})
	}

	return rows, nil
}

// CodeList 获取全部A股代码清单
func (a *AKShareAdapter) CodeList() ([]string, error) {
	var records []map[string]interface{}
	if err := a.client.GetJSON(a.baseURL+"/api/public/stock_info_a_code_name", nil, &records); err != nil {
		return nil, fmt.Errorf("获取股票代码清单失败: %w", err)
	}

	codes := make([]string, 0, len(records))
	for _, record := range records {
		code := fmt.Sprintf("%v", record["code"])
		if code != "" && code != "<nil>" {
			codes = append(codes, code)
		}
	}
	return codes, nil
}
