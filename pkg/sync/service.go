package sync

import (
	"fmt"
	"log"
	"time"

	"Momentum/pkg/datasource"
	"Momentum/pkg/model"
)

// StockStore 股票信息存储
type StockStore interface {
	GetBySymbol(symbol string) (*model.Stock, error)
	GetAll() ([]*model.Stock, error)
	ListSymbols() ([]string, error)
	Save(stock *model.Stock) error
	Create(stock *model.Stock) error
}

// PriceStore 日线数据存储
type PriceStore interface {
	ReplaceRange(stockID uint, start, end time.Time, rows []*model.DailyPrice) error
	CountRange(stockID uint, start, end time.Time) (int64, error)
	CountNullDates(stockID uint) (int64, error)
	CountDuplicateDates(stockID uint, start, end time.Time) (int64, error)
}

// FactorStore 因子数据存储
type FactorStore interface {
	SaveBatch(factors []*model.FactorValue) error
}

// FinancialStore 财务数据存储
type FinancialStore interface {
	SaveBatch(metrics []*model.FinancialMetric) error
	LatestReportDate(stockID uint) (time.Time, error)
}

// EventPublisher 同步事件发布接口
type EventPublisher interface {
	PublishSyncEvent(event SyncEvent) error
}

// Invalidator 缓存失效接口
type Invalidator interface {
	InvalidateSync() error
}

// SyncEvent 任务生命周期事件
type SyncEvent struct {
	JobID   string    `json:"job_id"`
	Kind    string    `json:"kind"`
	Status  string    `json:"status"`
	Count   int       `json:"count"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Service 同步编排器
// 独占任务状态写入权；events与cache可为nil，表示对应能力未接入
type Service struct {
	fallback   *datasource.Fallback
	stocks     StockStore
	prices     PriceStore
	factors    FactorStore
	financials FinancialStore
	audit      datasource.AuditSink
	progress   *Progress
	events     EventPublisher
	cache      Invalidator
}

// NewService 创建同步编排器
func NewService(
	sources []*datasource.Source,
	audit datasource.AuditSink,
	stocks StockStore,
	prices PriceStore,
	factors FactorStore,
	financials FinancialStore,
) *Service {
	return &Service{
		fallback:   datasource.NewFallback(sources, audit),
		stocks:     stocks,
		prices:     prices,
		factors:    factors,
		financials: financials,
		audit:      audit,
		progress:   NewProgress(),
	}
}

// SetEventPublisher 接入事件发布
func (s *Service) SetEventPublisher(events EventPublisher) {
	s.events = events
}

// SetCache 接入缓存失效
func (s *Service) SetCache(cache Invalidator) {
	s.cache = cache
}

// Progress 获取当前任务状态快照
func (s *Service) Progress() Snapshot {
	return s.progress.Snapshot()
}

// StartStockListSync 启动股票列表同步任务，后台执行
func (s *Service) StartStockListSync() (string, error) {
	jobID, err := s.progress.Begin(KindStockList, 0)
	if err != nil {
		return "", err
	}

	go func() {
		count, err := s.SyncStockList()
		if err != nil {
			s.progress.Fail(err.Error())
			s.notify(jobID, KindStockList, StatusError, count, err.Error())
			return
		}
		s.progress.Finish(count, count, fmt.Sprintf("完成，共同步 %d 只股票", count))
		s.notify(jobID, KindStockList, StatusFinished, count, "")
		s.invalidate()
	}()

	return jobID, nil
}

// StartDailySync 启动日线同步任务，后台执行
// symbols为空时同步全部已入库股票
func (s *Service) StartDailySync(symbols []string, start, end time.Time, syncType string) (string, error) {
	if len(symbols) == 0 {
		all, err := s.stocks.ListSymbols()
		if err != nil {
			return "", fmt.Errorf("获取股票代码列表失败: %w", err)
		}
		symbols = all
	}

	jobID, err := s.progress.Begin(KindDaily, len(symbols))
	if err != nil {
		return "", err
	}

	go func() {
		count, err := s.SyncDaily(symbols, start, end, syncType)
		if err != nil {
			s.progress.Fail(err.Error())
			s.notify(jobID, KindDaily, StatusError, count, err.Error())
			return
		}
		s.progress.Finish(len(symbols), len(symbols), fmt.Sprintf("完成，共同步 %d 条记录", count))
		s.notify(jobID, KindDaily, StatusFinished, count, "")
		s.invalidate()
	}()

	return jobID, nil
}

// StartFinancialsSync 启动财务指标同步任务，后台执行
// symbols为空时同步全部已入库股票
func (s *Service) StartFinancialsSync(symbols []string) (string, error) {
	if len(symbols) == 0 {
		all, err := s.stocks.ListSymbols()
		if err != nil {
			return "", fmt.Errorf("获取股票代码列表失败: %w", err)
		}
		symbols = all
	}

	jobID, err := s.progress.Begin(KindFinancials, len(symbols))
	if err != nil {
		return "", err
	}

	go func() {
		count, err := s.SyncFinancials(symbols)
		if err != nil {
			s.progress.Fail(err.Error())
			s.notify(jobID, KindFinancials, StatusError, count, err.Error())
			return
		}
		s.progress.Finish(len(symbols), len(symbols), fmt.Sprintf("完成，共同步 %d 条记录", count))
		s.notify(jobID, KindFinancials, StatusFinished, count, "")
	}()

	return jobID, nil
}

// RunScheduledSync 定时任务入口：先刷新股票列表，再同步近trailingDays日的全市场日线
// 已有任务运行时返回ErrSyncRunning，调度侧记录并跳过本次触发
func (s *Service) RunScheduledSync(trailingDays int) error {
	jobID, err := s.progress.Begin(KindScheduled, 0)
	if err != nil {
		return err
	}

	listCount, err := s.SyncStockList()
	if err != nil {
		s.progress.Fail(err.Error())
		s.notify(jobID, KindScheduled, StatusError, 0, err.Error())
		return err
	}
	log.Printf("[调度] 股票列表同步完成，共 %d 只\n", listCount)

	symbols, err := s.stocks.ListSymbols()
	if err != nil {
		s.progress.Fail(err.Error())
		s.notify(jobID, KindScheduled, StatusError, 0, err.Error())
		return err
	}

	// 回看几个交易日，自愈此前短暂的数据缺口
	end := time.Now()
	start := end.AddDate(0, 0, -trailingDays)

	s.progress.Update(0, len(symbols), "开始同步日线数据...")
	count, err := s.SyncDaily(symbols, start, end, model.SyncTypeScheduled)
	if err != nil {
		s.progress.Fail(err.Error())
		s.notify(jobID, KindScheduled, StatusError, count, err.Error())
		return err
	}

	s.progress.Finish(len(symbols), len(symbols), fmt.Sprintf("完成，共同步 %d 条记录", count))
	s.notify(jobID, KindScheduled, StatusFinished, count, "")
	s.invalidate()
	return nil
}

// SyncStockList 同步股票列表
// 与日线同步不同：不做短路，按优先级收集每个数据源的结果后统一合并
// 合并按symbol去重，首次出现者优先；已有股票的快照字段按非空覆盖
func (s *Service) SyncStockList() (int, error) {
	sources := s.fallback.Sources()
	totalSources := len(sources)

	var collected []model.StockRow

	for i, source := range sources {
		s.progress.Update(i*50/totalSources, 100, fmt.Sprintf("正在从 %s 获取数据...", source.Name))

		if source.StockList == nil {
			continue
		}

		rows, err := source.StockList()
		if err != nil {
			s.logList(source.Key, model.SyncStatusFailed, err.Error())
			log.Printf("[同步] %s 获取失败: %v\n", source.Name, err)
			continue
		}

		collected = append(collected, rows...)
		s.logList(source.Key, model.SyncStatusSuccess, fmt.Sprintf("获取 %d 条记录", len(rows)))
		log.Printf("[同步] %s 成功获取 %d 只股票\n", source.Name, len(rows))
	}

	s.progress.Update(60, 100, "合并数据并更新数据库...")

	// 所有数据源均无结果时不触碰数据库
	if len(collected) == 0 {
		return 0, nil
	}

	merged := dedupBySymbol(collected)

	existing, err := s.stocks.GetAll()
	if err != nil {
		return 0, fmt.Errorf("读取已有股票失败: %w", err)
	}
	bySymbol := make(map[string]*model.Stock, len(existing))
	for _, stock := range existing {
		bySymbol[stock.Symbol] = stock
	}

	count := 0
	for i, row := range merged {
		if i%100 == 0 {
			s.progress.Update(60+i*40/len(merged), 100, fmt.Sprintf("正在更新 %s...", row.Symbol))
		}

		if stock, ok := bySymbol[row.Symbol]; ok {
			// 名称和市场无条件覆盖，快照指标只在新值非空时覆盖
			stock.Name = row.Name
			stock.Market = row.Market
			if row.MarketCap != nil {
				stock.MarketCap = row.MarketCap
			}
			if row.PERatio != nil {
				stock.PERatio = row.PERatio
			}
			if row.PBRatio != nil {
				stock.PBRatio = row.PBRatio
			}
			if row.Industry != nil {
				stock.Industry = row.Industry
			}
			if err := s.stocks.Save(stock); err != nil {
				return count, fmt.Errorf("更新股票 %s 失败: %w", row.Symbol, err)
			}
		} else {
			stock := &model.Stock{
				Symbol:    row.Symbol,
				Name:      row.Name,
				Market:    row.Market,
				MarketCap: row.MarketCap,
				PERatio:   row.PERatio,
				PBRatio:   row.PBRatio,
				Industry:  row.Industry,
			}
			if err := s.stocks.Create(stock); err != nil {
				return count, fmt.Errorf("新增股票 %s 失败: %w", row.Symbol, err)
			}
		}
		count++
	}

	return count, nil
}

// SyncDaily 同步日线数据并重算因子
// 逐只股票串行处理；单只股票全部数据源失败时跳过，不影响其余股票
func (s *Service) SyncDaily(symbols []string, start, end time.Time, syncType string) (int, error) {
	count := 0
	total := len(symbols)

	for i, symbol := range symbols {
		s.progress.Update(i, total, fmt.Sprintf("正在同步 %s (%d/%d)", symbol, i+1, total))

		rows, _, err := s.fallback.FetchDaily(symbol, start, end, syncType)
		if err != nil {
			// 失败明细已由协调器写入审计日志
			continue
		}

		stock, err := s.stocks.GetBySymbol(symbol)
		if err != nil {
			return count, err
		}
		if stock == nil {
			continue
		}

		// 日线数据携带快照指标时顺带刷新股票属性
		if s.refreshSnapshot(stock, rows[len(rows)-1]) {
			if err := s.stocks.Save(stock); err != nil {
				return count, fmt.Errorf("刷新股票属性失败 %s: %w", symbol, err)
			}
		}

		prices := make([]*model.DailyPrice, 0, len(rows))
		for _, row := range rows {
			prices = append(prices, &model.DailyPrice{
				StockID:   stock.ID,
				TradeDate: row.TradeDate,
				Open:      row.Open,
				High:      row.High,
				Low:       row.Low,
				Close:     row.Close,
				Volume:    row.Volume,
				Amount:    row.Amount,
			})
		}
		if err := s.prices.ReplaceRange(stock.ID, start, end, prices); err != nil {
			return count, err
		}

		factors := make([]*model.FactorValue, 0, len(rows))
		for _, point := range ComputeFactors(rows) {
			momentum, volatility, liquidity := point.Momentum, point.Volatility, point.Liquidity
			factors = append(factors, &model.FactorValue{
				StockID:    stock.ID,
				FactorDate: point.Date,
				Momentum:   &momentum,
				Volatility: &volatility,
				Liquidity:  &liquidity,
			})
		}
		if err := s.factors.SaveBatch(factors); err != nil {
			return count, err
		}

		count += len(rows)
	}

	return count, nil
}

// SyncFinancials 同步财务指标，只追加比已入库报告期更新的记录
func (s *Service) SyncFinancials(symbols []string) (int, error) {
	count := 0
	total := len(symbols)

	for i, symbol := range symbols {
		s.progress.Update(i, total, fmt.Sprintf("正在同步财务指标 %s (%d/%d)", symbol, i+1, total))

		rows, _, err := s.fallback.FetchFinancials(symbol)
		if err != nil {
			continue
		}

		stock, err := s.stocks.GetBySymbol(symbol)
		if err != nil {
			return count, err
		}
		if stock == nil {
			continue
		}

		latest, err := s.financials.LatestReportDate(stock.ID)
		if err != nil {
			return count, err
		}

		metrics := make([]*model.FinancialMetric, 0, len(rows))
		for _, row := range rows {
			if !latest.IsZero() && !row.ReportDate.After(latest) {
				continue
			}
			metrics = append(metrics, &model.FinancialMetric{
				StockID:    stock.ID,
				ReportDate: row.ReportDate,
				Revenue:    row.Revenue,
				NetProfit:  row.NetProfit,
				ROE:        row.ROE,
				DebtRatio:  row.DebtRatio,
			})
		}
		if err := s.financials.SaveBatch(metrics); err != nil {
			return count, err
		}
		count += len(metrics)
	}

	return count, nil
}

// IntegrityReport 数据完整性诊断结果
type IntegrityReport struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	Rows       int64  `json:"rows"`
	Missing    int64  `json:"missing"`
	Duplicates int64  `json:"duplicates"`
}

// ValidateIntegrity 只读诊断：检查区间内日线数据是否存在、空日期数和重复日期数
func (s *Service) ValidateIntegrity(symbol string, start, end time.Time) (*IntegrityReport, error) {
	stock, err := s.stocks.GetBySymbol(symbol)
	if err != nil {
		return nil, err
	}
	if stock == nil {
		return &IntegrityReport{Symbol: symbol, Status: "missing"}, nil
	}

	rows, err := s.prices.CountRange(stock.ID, start, end)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return &IntegrityReport{Symbol: symbol, Status: "missing"}, nil
	}

	missing, err := s.prices.CountNullDates(stock.ID)
	if err != nil {
		return nil, err
	}
	duplicates, err := s.prices.CountDuplicateDates(stock.ID, start, end)
	if err != nil {
		return nil, err
	}

	return &IntegrityReport{
		Symbol:     symbol,
		Status:     "ok",
		Rows:       rows,
		Missing:    missing,
		Duplicates: duplicates,
	}, nil
}

// refreshSnapshot 用最近一根日线携带的快照指标刷新股票属性
func (s *Service) refreshSnapshot(stock *model.Stock, last model.BarRow) bool {
	updated := false
	if last.MarketCap != nil {
		stock.MarketCap = last.MarketCap
		updated = true
	}
	if last.PERatio != nil {
		stock.PERatio = last.PERatio
		updated = true
	}
	if last.PBRatio != nil {
		stock.PBRatio = last.PBRatio
		updated = true
	}
	return updated
}

// dedupBySymbol 按symbol去重，保留首次出现的行
func dedupBySymbol(rows []model.StockRow) []model.StockRow {
	seen := make(map[string]bool, len(rows))
	merged := make([]model.StockRow, 0, len(rows))
	for _, row := range rows {
		if row.Symbol == "" || seen[row.Symbol] {
			continue
		}
		seen[row.Symbol] = true
		merged = append(merged, row)
	}
	return merged
}

// logList 写入列表同步审计日志
func (s *Service) logList(source, status, message string) {
	if s.audit == nil {
		return
	}
	entry := &model.DataSyncLog{
		DataSource: source,
		SyncType:   model.SyncTypeStockList,
		Status:     status,
		Message:    &message,
	}
	if err := s.audit.Append(entry); err != nil {
		log.Printf("[同步] 写入审计日志失败: %v\n", err)
	}
}

// notify 发布任务生命周期事件
func (s *Service) notify(jobID, kind, status string, count int, message string) {
	if s.events == nil {
		return
	}
	event := SyncEvent{
		JobID:   jobID,
		Kind:    kind,
		Status:  status,
		Count:   count,
		Message: message,
		Time:    time.Now(),
	}
	if err := s.events.PublishSyncEvent(event); err != nil {
		log.Printf("[同步] 发布事件失败: %v\n", err)
	}
}

// invalidate 同步成功后使相关缓存失效
func (s *Service) invalidate() {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSync(); err != nil {
		log.Printf("[同步] 缓存失效失败: %v\n", err)
	}
}
