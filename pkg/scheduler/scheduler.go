package scheduler

import (
	"errors"
	"log"

	"github.com/robfig/cron/v3"

	syncer "Momentum/pkg/sync"
)

// Scheduler 任务调度器
// 工作日收盘后触发一次全市场增量同步
type Scheduler struct {
	cron         *cron.Cron
	service      *syncer.Service
	dailySpec    string
	trailingDays int
}

// NewScheduler 创建任务调度器
func NewScheduler(service *syncer.Service, dailySpec string, trailingDays int) *Scheduler {
	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		service:      service,
		dailySpec:    dailySpec,
		trailingDays: trailingDays,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.dailySpec, s.runDailySync)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("调度器已启动，每日同步时间表: %s\n", s.dailySpec)
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("调度器已停止")
}

// runDailySync 执行每日定时同步
func (s *Scheduler) runDailySync() {
	log.Println("开始执行定时同步任务...")

	if err := s.service.RunScheduledSync(s.trailingDays); err != nil {
		if errors.Is(err, syncer.ErrSyncRunning) {
			// 已有任务在运行时跳过本次触发，不排队
			log.Println("已有同步任务在运行，跳过本次定时触发")
			return
		}
		log.Printf("定时同步任务失败: %v\n", err)
		return
	}

	log.Println("定时同步任务完成")
}
