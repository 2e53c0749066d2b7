// pkg/database/price.go
package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"Momentum/pkg/model"
)

type PriceDB struct {
	db *gorm.DB
}

func (p *PostgresDB) Price() *PriceDB {
	return &PriceDB{db: p.db}
}

// ReplaceRange 原子替换区间内的日线数据
// 同一事务内先删除[start, end]内的旧行再批量插入新行，重复同步结果幂等
func (d *PriceDB) ReplaceRange(stockID uint, start, end time.Time, rows []*model.DailyPrice) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("stock_id = ? AND trade_date BETWEEN ? AND ?", stockID, start, end).
			Delete(&model.DailyPrice{}).Error; err != nil {
			return fmt.Errorf("删除区间日线数据失败: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("写入日线数据失败: %w", err)
		}
		return nil
	})
}

func (d *PriceDB) GetRange(stockID uint, start, end time.Time) ([]*model.DailyPrice, error) {
	var prices []*model.DailyPrice
	err := d.db.Where("stock_id = ? AND trade_date BETWEEN ? AND ?", stockID, start, end).
		Order("trade_date ASC").
		Find(&prices).Error

	if err != nil {
		return nil, fmt.Errorf("查询区间日线数据失败: %w", err)
	}
	return prices, nil
}

func (d *PriceDB) CountRange(stockID uint, start, end time.Time) (int64, error) {
	var count int64
	err := d.db.Model(&model.DailyPrice{}).
		Where("stock_id = ? AND trade_date BETWEEN ? AND ?", stockID, start, end).
		Count(&count).Error
	return count, err
}

// CountNullDates 统计交易日为空的行数
func (d *PriceDB) CountNullDates(stockID uint) (int64, error) {
	var count int64
	err := d.db.Model(&model.DailyPrice{}).
		Where("stock_id = ? AND trade_date IS NULL", stockID).
		Count(&count).Error
	return count, err
}

// CountDuplicateDates 统计区间内重复交易日的行数
func (d *PriceDB) CountDuplicateDates(stockID uint, start, end time.Time) (int64, error) {
	type dupRow struct {
		TradeDate time.Time
		Cnt       int64
	}
	var dups []dupRow
	err := d.db.Model(&model.DailyPrice{}).
		Select("trade_date, COUNT(*) as cnt").
		Where("stock_id = ? AND trade_date BETWEEN ? AND ?", stockID, start, end).
		Group("trade_date").
		Having("COUNT(*) > 1").
		Find(&dups).Error
	if err != nil {
		return 0, fmt.Errorf("统计重复交易日失败: %w", err)
	}

	var total int64
	for _, dup := range dups {
		total += dup.Cnt - 1
	}
	return total, nil
}
