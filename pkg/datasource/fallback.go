package datasource

import (
	"errors"
	"fmt"
	"log"
	"time"

	"Momentum/pkg/model"
)

// ErrAllSourcesFailed 所有数据源均未返回可用结果
var ErrAllSourcesFailed = errors.New("所有数据源均获取失败")

// AuditSink 同步审计日志写入接口
type AuditSink interface {
	Append(entry *model.DataSyncLog) error
}

// Fallback 数据源故障转移协调器
// 按优先级依次尝试各数据源，空结果与报错同等对待，每次尝试写审计日志
type Fallback struct {
	sources []*Source
	audit   AuditSink
}

// NewFallback 创建故障转移协调器
func NewFallback(sources []*Source, audit AuditSink) *Fallback {
	return &Fallback{
		sources: SortByPriority(sources),
		audit:   audit,
	}
}

// Sources 返回按优先级排序后的数据源表
func (f *Fallback) Sources() []*Source {
	return f.sources
}

// FetchDaily 按优先级获取某只股票的日线数据
// 首个非空结果立即返回，不再尝试后续数据源；全部失败返回ErrAllSourcesFailed
func (f *Fallback) FetchDaily(symbol string, start, end time.Time, syncType string) ([]model.BarRow, string, error) {
	var lastErr error

	for _, source := range f.sources {
		if source.Daily == nil {
			continue
		}

		rows, err := source.Daily(symbol, start, end)
		if err == nil && len(rows) > 0 {
			f.logAttempt(source.Key, syncType, &start, &end, model.SyncStatusSuccess,
				fmt.Sprintf("%s: %d 条", symbol, len(rows)))
			log.Printf("[同步] %s: 从 %s 获取 %d 条记录\n", symbol, source.Name, len(rows))
			return rows, source.Key, nil
		}

		if err == nil {
			err = fmt.Errorf("返回空结果")
		}
		lastErr = err
		f.logAttempt(source.Key, syncType, &start, &end, model.SyncStatusFailed,
			fmt.Sprintf("%s: %v", symbol, err))
		log.Printf("[同步] %s: %s 失败 - %v\n", symbol, source.Name, err)
	}

	return nil, "", fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
}

// FetchFinancials 按优先级获取财务数据
func (f *Fallback) FetchFinancials(symbol string) ([]model.FinRow, string, error) {
	var lastErr error

	for _, source := range f.sources {
		if source.Financials == nil {
			continue
		}

		rows, err := source.Financials(symbol)
		if err == nil && len(rows) > 0 {
			f.logAttempt(source.Key, model.SyncTypeFinancials, nil, nil, model.SyncStatusSuccess,
				fmt.Sprintf("%s: %d 条", symbol, len(rows)))
			return rows, source.Key, nil
		}

		if err == nil {
			err = fmt.Errorf("返回空结果")
		}
		lastErr = err
		f.logAttempt(source.Key, model.SyncTypeFinancials, nil, nil, model.SyncStatusFailed,
			fmt.Sprintf("%s: %v", symbol, err))
	}

	return nil, "", fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
}

// logAttempt 写入一条审计日志，审计失败只记录不阻断同步
func (f *Fallback) logAttempt(source, syncType string, start, end *time.Time, status, message string) {
	if f.audit == nil {
		return
	}
	entry := &model.DataSyncLog{
		DataSource: source,
		SyncType:   syncType,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
		Message:    &message,
	}
	if err := f.audit.Append(entry); err != nil {
		log.Printf("[同步] 写入审计日志失败: %v\n", err)
	}
}
