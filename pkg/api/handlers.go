package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"Momentum/pkg/database"
	"Momentum/pkg/model"
	"Momentum/pkg/monitor"
	syncer "Momentum/pkg/sync"
)

// StockReader 股票读取接口
type StockReader interface {
	GetAll() ([]*model.Stock, error)
	GetBySymbol(symbol string) (*model.Stock, error)
	Search(keyword string, limit int) ([]*model.Stock, error)
}

// PriceReader 日线读取接口
type PriceReader interface {
	GetRange(stockID uint, start, end time.Time) ([]*model.DailyPrice, error)
}

// FactorReader 因子读取接口
type FactorReader interface {
	GetLatest(stockID uint) (*model.FactorValue, error)
}

// ReadCache 股票列表与最新因子的读穿缓存
type ReadCache interface {
	GetStockList() ([]*model.Stock, error)
	SetStockList(stocks []*model.Stock) error
	GetLatestFactor(symbol string) (*model.FactorValue, error)
	SetLatestFactor(symbol string, factor *model.FactorValue) error
}

// Handlers API处理程序
// cache可为nil，表示缓存能力未接入，读请求直接落库
type Handlers struct {
	service *syncer.Service
	syncLog *database.SyncLogDB
	monitor *monitor.Monitor
	stocks  StockReader
	prices  PriceReader
	factors FactorReader
	cache   ReadCache
}

// NewHandlers 创建新的API处理程序
func NewHandlers(
	service *syncer.Service,
	syncLog *database.SyncLogDB,
	mon *monitor.Monitor,
	stocks StockReader,
	prices PriceReader,
	factors FactorReader,
) *Handlers {
	return &Handlers{
		service: service,
		syncLog: syncLog,
		monitor: mon,
		stocks:  stocks,
		prices:  prices,
		factors: factors,
	}
}

// SetCache 接入读穿缓存
func (h *Handlers) SetCache(cache ReadCache) {
	h.cache = cache
}

// HealthCheck 健康检查处理程序
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck 就绪检查处理程序
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// StartStockListSync 启动股票列表同步
func (h *Handlers) StartStockListSync(c *gin.Context) {
	jobID, err := h.service.StartStockListSync()
	if err != nil {
		if errors.Is(err, syncer.ErrSyncRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "已有同步任务在运行",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "启动同步任务失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "started",
		"job_id": jobID,
	})
}

// DailySyncRequest 日线同步请求
type DailySyncRequest struct {
	Symbols   []string `json:"symbols"`
	StartDate string   `json:"start_date" binding:"required"`
	EndDate   string   `json:"end_date" binding:"required"`
	SyncType  string   `json:"sync_type"`
}

// StartDailySync 启动日线同步
func (h *Handlers) StartDailySync(c *gin.Context) {
	var req DailySyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数无效: " + err.Error(),
		})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "start_date格式无效，应为YYYY-MM-DD",
		})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "end_date格式无效，应为YYYY-MM-DD",
		})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "end_date不能早于start_date",
		})
		return
	}

	syncType := req.SyncType
	if syncType == "" {
		syncType = model.SyncTypeIncrement
	}

	jobID, err := h.service.StartDailySync(req.Symbols, start, end, syncType)
	if err != nil {
		if errors.Is(err, syncer.ErrSyncRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "已有同步任务在运行",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "启动同步任务失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "started",
		"job_id": jobID,
	})
}

// FinancialsSyncRequest 财务指标同步请求
type FinancialsSyncRequest struct {
	Symbols []string `json:"symbols"`
}

// StartFinancialsSync 启动财务指标同步
// 请求体可省略，省略时同步全部已入库股票
func (h *Handlers) StartFinancialsSync(c *gin.Context) {
	var req FinancialsSyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "请求参数无效: " + err.Error(),
			})
			return
		}
	}

	jobID, err := h.service.StartFinancialsSync(req.Symbols)
	if err != nil {
		if errors.Is(err, syncer.ErrSyncRunning) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "已有同步任务在运行",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "启动同步任务失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "started",
		"job_id": jobID,
	})
}

// GetStocks 查询股票列表
// 带keyword参数时走模糊搜索，否则优先读缓存，未命中落库并回填
func (h *Handlers) GetStocks(c *gin.Context) {
	if keyword := c.Query("keyword"); keyword != "" {
		stocks, err := h.stocks.Search(keyword, 50)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "搜索股票失败: " + err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"data":  stocks,
			"count": len(stocks),
		})
		return
	}

	if h.cache != nil {
		if stocks, err := h.cache.GetStockList(); err == nil && stocks != nil {
			c.JSON(http.StatusOK, gin.H{
				"data":  stocks,
				"count": len(stocks),
			})
			return
		}
	}

	stocks, err := h.stocks.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询股票列表失败: " + err.Error(),
		})
		return
	}

	if h.cache != nil {
		if err := h.cache.SetStockList(stocks); err != nil {
			log.Printf("[API] 回填股票列表缓存失败: %v\n", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  stocks,
		"count": len(stocks),
	})
}

// GetPrices 查询某只股票区间内的日线数据
func (h *Handlers) GetPrices(c *gin.Context) {
	symbol := c.Param("symbol")

	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "start_date格式无效，应为YYYY-MM-DD",
		})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "end_date格式无效，应为YYYY-MM-DD",
		})
		return
	}

	stock, err := h.stocks.GetBySymbol(symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询股票信息失败: " + err.Error(),
		})
		return
	}
	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "股票不存在: " + symbol,
		})
		return
	}

	prices, err := h.prices.GetRange(stock.ID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询日线数据失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"data":   prices,
		"count":  len(prices),
	})
}

// GetLatestFactor 查询某只股票的最新因子
// 优先读缓存，未命中落库并回填
func (h *Handlers) GetLatestFactor(c *gin.Context) {
	symbol := c.Param("symbol")

	if h.cache != nil {
		if factor, err := h.cache.GetLatestFactor(symbol); err == nil && factor != nil {
			c.JSON(http.StatusOK, factor)
			return
		}
	}

	stock, err := h.stocks.GetBySymbol(symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询股票信息失败: " + err.Error(),
		})
		return
	}
	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "股票不存在: " + symbol,
		})
		return
	}

	factor, err := h.factors.GetLatest(stock.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询因子数据失败: " + err.Error(),
		})
		return
	}
	if factor == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "暂无因子数据: " + symbol,
		})
		return
	}

	if h.cache != nil {
		if err := h.cache.SetLatestFactor(symbol, factor); err != nil {
			log.Printf("[API] 回填因子缓存失败: %v\n", err)
		}
	}

	c.JSON(http.StatusOK, factor)
}

// GetSyncProgress 查询当前同步进度
func (h *Handlers) GetSyncProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Progress())
}

// GetSyncLogs 查询最近的同步日志
func (h *Handlers) GetSyncLogs(c *gin.Context) {
	limit := 100
	entries, err := h.syncLog.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "查询同步日志失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": entries,
	})
}

// GetIntegrity 数据完整性诊断
func (h *Handlers) GetIntegrity(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "symbol参数不能为空",
		})
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "start_date格式无效，应为YYYY-MM-DD",
		})
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "end_date格式无效，应为YYYY-MM-DD",
		})
		return
	}

	report, err := h.service.ValidateIntegrity(symbol, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "完整性检查失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetSourceHealth 查询数据源健康状态
// 带source参数时只返回单个数据源
func (h *Handlers) GetSourceHealth(c *gin.Context) {
	if source := c.Query("source"); source != "" {
		status, ok := h.monitor.GetStatus(source)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "未知数据源: " + source,
			})
			return
		}
		c.JSON(http.StatusOK, status)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": h.monitor.GetAll(),
	})
}
