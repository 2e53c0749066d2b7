package model

import (
	"time"
)

// 同步状态
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// 同步类型
const (
	SyncTypeStockList  = "stock_list"
	SyncTypeIncrement  = "incremental"
	SyncTypeScheduled  = "scheduled"
	SyncTypeFinancials = "financials"
)

// DataSyncLog 数据同步审计日志
// 每次数据源调用写一条，只追加，引擎不做更新和删除
type DataSyncLog struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	DataSource string     `gorm:"size:32;index" json:"data_source"`
	SyncType   string     `gorm:"size:32" json:"sync_type"`
	StartDate  *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate    *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Status     string     `gorm:"size:16" json:"status"`
	Message    *string    `gorm:"size:1024" json:"message,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
