// pkg/database/synclog.go
package database

import (
	"fmt"

	"gorm.io/gorm"

	"Momentum/pkg/model"
)

type SyncLogDB struct {
	db *gorm.DB
}

func (p *PostgresDB) SyncLog() *SyncLogDB {
	return &SyncLogDB{db: p.db}
}

// Append 追加一条同步日志
func (s *SyncLogDB) Append(entry *model.DataSyncLog) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("写入同步日志失败: %w", err)
	}
	return nil
}

// Recent 获取最近的同步日志
func (s *SyncLogDB) Recent(limit int) ([]*model.DataSyncLog, error) {
	var entries []*model.DataSyncLog
	err := s.db.Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error

	if err != nil {
		return nil, fmt.Errorf("查询同步日志失败: %w", err)
	}
	return entries, nil
}
