// pkg/database/factor.go
package database

import (
	"fmt"

	"gorm.io/gorm"

	"Momentum/pkg/model"
)

type FactorDB struct {
	db *gorm.DB
}

func (p *PostgresDB) Factor() *FactorDB {
	return &FactorDB{db: p.db}
}

func (f *FactorDB) SaveBatch(factors []*model.FactorValue) error {
	if len(factors) == 0 {
		return nil
	}
	return f.db.CreateInBatches(factors, 500).Error
}

// GetLatest 获取某只股票最新一条因子记录
func (f *FactorDB) GetLatest(stockID uint) (*model.FactorValue, error) {
	var factor model.FactorValue
	err := f.db.Where("stock_id = ?", stockID).
		Order("factor_date DESC, id DESC").
		First(&factor).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询因子数据失败: %w", err)
	}
	return &factor, nil
}
