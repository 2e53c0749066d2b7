package model

import (
	"time"
)

// Stock 股票基础信息
// symbol全局唯一；market_cap/pe_ratio/pb_ratio为快照字段，每次列表同步覆盖更新
type Stock struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	Symbol    string   `gorm:"uniqueIndex;size:16" json:"symbol"`
	Name      string   `gorm:"size:64" json:"name"`
	Market    string   `gorm:"size:8" json:"market"`
	Industry  *string  `gorm:"size:64" json:"industry,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
	PERatio   *float64 `gorm:"column:pe_ratio" json:"pe_ratio,omitempty"`
	PBRatio   *float64 `gorm:"column:pb_ratio" json:"pb_ratio,omitempty"`
}

// DailyPrice 日线行情数据
// (stock_id, trade_date) 唯一；区间重新同步时先删后插，保证幂等
type DailyPrice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StockID   uint      `gorm:"index:idx_price_stock_date,unique" json:"stock_id"`
	TradeDate time.Time `gorm:"index:idx_price_stock_date,unique;type:date" json:"trade_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Amount    *float64  `json:"amount,omitempty"`
}

// FactorValue 衍生因子
// 由日线历史计算得出，同步后追加写入，下游取每只股票最新一条
type FactorValue struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StockID    uint      `gorm:"index" json:"stock_id"`
	FactorDate time.Time `gorm:"index;type:date" json:"factor_date"`
	Momentum   *float64  `json:"momentum,omitempty"`
	Volatility *float64  `json:"volatility,omitempty"`
	Liquidity  *float64  `json:"liquidity,omitempty"`
}

// FinancialMetric 财务指标
type FinancialMetric struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StockID    uint      `gorm:"index" json:"stock_id"`
	ReportDate time.Time `gorm:"index;type:date" json:"report_date"`
	Revenue    *float64  `json:"revenue,omitempty"`
	NetProfit  *float64  `json:"net_profit,omitempty"`
	ROE        *float64  `gorm:"column:roe" json:"roe,omitempty"`
	DebtRatio  *float64  `json:"debt_ratio,omitempty"`
}
