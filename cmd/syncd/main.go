package main

import (
	"log"
	"os"

	"Momentum/pkg/api"
	"Momentum/pkg/cache"
	"Momentum/pkg/config"
	"Momentum/pkg/database"
	"Momentum/pkg/datasource"
	"Momentum/pkg/messaging"
	"Momentum/pkg/model"
	"Momentum/pkg/monitor"
	"Momentum/pkg/scheduler"
	syncer "Momentum/pkg/sync"
)

// auditRecorder 审计日志写入，同时上报数据源健康状态
type auditRecorder struct {
	logs *database.SyncLogDB
	mon  *monitor.Monitor
}

func (a *auditRecorder) Append(entry *model.DataSyncLog) error {
	status := "healthy"
	if entry.Status == model.SyncStatusFailed {
		status = "degraded"
	}
	message := ""
	if entry.Message != nil {
		message = *entry.Message
	}
	a.mon.UpdateStatus(entry.DataSource, status, message)

	return a.logs.Append(entry)
}

func main() {
	log.Println("启动数据同步服务...")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v\n", err)
	}

	// 连接数据库
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("连接数据库失败: %v\n", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("数据库迁移失败: %v\n", err)
	}

	// 数据源健康监控
	mon := monitor.NewMonitor()

	// HTTP客户端与数据源配置表
	client := datasource.NewClient(
		cfg.Sync.MaxRetries,
		cfg.Sync.BaseDelay.Std(),
		cfg.Sync.MaxDelay.Std(),
		cfg.Sync.Timeout.Std(),
	)
	sources := datasource.DefaultSources(cfg, client)
	for _, source := range sources {
		mon.RegisterComponent(source.Key)
	}

	// 同步编排器
	audit := &auditRecorder{logs: db.SyncLog(), mon: mon}
	service := syncer.NewService(sources, audit, db.Stock(), db.Price(), db.Factor(), db.Financial())

	// Redis缓存，连接失败时降级运行
	redisCache, err := cache.NewRedisCache(cfg)
	if err != nil {
		log.Printf("连接Redis失败，缓存能力不可用: %v\n", err)
	} else {
		defer redisCache.Close()
		service.SetCache(redisCache)
	}

	// NATS事件发布，连接失败时降级运行
	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL, cfg.NATS.ClientID)
	if err != nil {
		log.Printf("连接NATS失败，事件发布不可用: %v\n", err)
	} else {
		defer natsClient.Close()
		service.SetEventPublisher(natsClient)
	}

	// 启动定时调度
	sched := scheduler.NewScheduler(service, cfg.Scheduler.DailySpec, cfg.Sync.TrailingDays)
	if err := sched.Start(); err != nil {
		log.Fatalf("启动调度器失败: %v\n", err)
	}
	defer sched.Stop()

	// 启动API服务器（阻塞直到收到中断信号）
	server := api.NewServer(cfg.API.Port, cfg.API.ReadTimeout.Std(), cfg.API.WriteTimeout.Std())
	handlers := api.NewHandlers(service, db.SyncLog(), mon, db.Stock(), db.Price(), db.Factor())
	if redisCache != nil {
		handlers.SetCache(redisCache)
	}
	server.SetupRoutes(handlers)
	server.Start()

	log.Println("数据同步服务已退出")
}
