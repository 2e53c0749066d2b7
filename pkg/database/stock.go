// pkg/database/stock.go
package database

import (
	"fmt"

	"gorm.io/gorm"

	"Momentum/pkg/model"
)

type StockDB struct {
	db *gorm.DB
}

func (p *PostgresDB) Stock() *StockDB {
	return &StockDB{db: p.db}
}

func (s *StockDB) Save(stock *model.Stock) error {
	return s.db.Save(stock).Error
}

func (s *StockDB) Create(stock *model.Stock) error {
	return s.db.Create(stock).Error
}

func (s *StockDB) GetBySymbol(symbol string) (*model.Stock, error) {
	var stock model.Stock
	err := s.db.First(&stock, "symbol = ?", symbol).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("获取股票信息失败: %w", err)
	}
	return &stock, nil
}

func (s *StockDB) GetAll() ([]*model.Stock, error) {
	var stocks []*model.Stock
	err := s.db.Order("symbol ASC").Find(&stocks).Error
	if err != nil {
		return nil, fmt.Errorf("查询股票列表失败: %w", err)
	}
	return stocks, nil
}

func (s *StockDB) ListSymbols() ([]string, error) {
	var symbols []string
	err := s.db.Model(&model.Stock{}).Order("symbol ASC").Pluck("symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("查询股票代码列表失败: %w", err)
	}
	return symbols, nil
}

func (s *StockDB) Search(keyword string, limit int) ([]*model.Stock, error) {
	var stocks []*model.Stock
	searchPattern := "%" + keyword + "%"

	err := s.db.Where("symbol ILIKE ? OR name ILIKE ?", searchPattern, searchPattern).
		Limit(limit).
		Find(&stocks).Error

	if err != nil {
		return nil, fmt.Errorf("搜索股票失败: %w", err)
	}
	return stocks, nil
}
