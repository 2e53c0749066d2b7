// pkg/database/financial.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"Momentum/pkg/model"
)

type FinancialDB struct {
	db *gorm.DB
}

func (p *PostgresDB) Financial() *FinancialDB {
	return &FinancialDB{db: p.db}
}

func (f *FinancialDB) SaveBatch(metrics []*model.FinancialMetric) error {
	if len(metrics) == 0 {
		return nil
	}
	return f.db.CreateInBatches(metrics, 500).Error
}

// LatestReportDate 获取某只股票已入库的最新报告期
// 没有记录时返回零值时间
func (f *FinancialDB) LatestReportDate(stockID uint) (time.Time, error) {
	var metric model.FinancialMetric
	err := f.db.Where("stock_id = ?", stockID).
		Order("report_date DESC").
		First(&metric).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("查询最新报告期失败: %w", err)
	}
	return metric.ReportDate, nil
}
