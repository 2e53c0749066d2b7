package model

import (
	"time"
)

// StockRow 数据源返回的股票列表行（统一格式）
// 可空字段用指针表示，nil代表该数据源未提供
type StockRow struct {
	Symbol    string
	Name      string
	Market    string
	MarketCap *float64
	PERatio   *float64
	PBRatio   *float64
	Industry  *string
}

// BarRow 数据源返回的日线行（统一格式）
type BarRow struct {
	TradeDate time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Amount    *float64

	// 部分数据源的日线接口顺带返回快照指标，用于刷新股票属性
	MarketCap *float64
	PERatio   *float64
	PBRatio   *float64
}

// FinRow 数据源返回的财务指标行（统一格式）
type FinRow struct {
	ReportDate time.Time
	Revenue    *float64
	NetProfit  *float64
	ROE        *float64
	DebtRatio  *float64
}
