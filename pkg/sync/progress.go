package sync

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// 任务状态
const (
	StatusIdle     = "idle"
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusError    = "error"
)

// 任务类型
const (
	KindStockList  = "stock_list"
	KindDaily      = "daily"
	KindScheduled  = "scheduled"
	KindFinancials = "financials"
)

// ErrSyncRunning 已有同步任务在运行
var ErrSyncRunning = errors.New("同步任务正在运行")

// Snapshot 任务状态的时间点快照
type Snapshot struct {
	JobID   string `json:"job_id,omitempty"`
	Status  string `json:"status"`
	Kind    string `json:"type,omitempty"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Progress 进程内唯一的同步任务状态
// 同一时刻至多一个任务处于running，新的启动请求直接拒绝而非排队
type Progress struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewProgress 创建任务状态跟踪器
func NewProgress() *Progress {
	return &Progress{
		snap: Snapshot{Status: StatusIdle},
	}
}

// Begin 启动新任务，已有任务运行时返回ErrSyncRunning且不影响在途任务
func (p *Progress) Begin(kind string, total int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snap.Status == StatusRunning {
		return "", ErrSyncRunning
	}

	jobID := uuid.NewString()
	p.snap = Snapshot{
		JobID:   jobID,
		Status:  StatusRunning,
		Kind:    kind,
		Current: 0,
		Total:   total,
		Message: "任务启动...",
	}
	return jobID, nil
}

// Update 推进任务进度
func (p *Progress) Update(current, total int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snap.Status != StatusRunning {
		return
	}
	p.snap.Current = current
	if total > 0 {
		p.snap.Total = total
	}
	if message != "" {
		p.snap.Message = message
	}
}

// Finish 任务正常结束
func (p *Progress) Finish(current, total int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Status = StatusFinished
	p.snap.Current = current
	p.snap.Total = total
	p.snap.Message = message
}

// Fail 任务异常终止
func (p *Progress) Fail(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Status = StatusError
	p.snap.Message = message
}

// Snapshot 获取当前状态快照
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}
