package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"Momentum/pkg/model"
	"Momentum/pkg/monitor"
)

// ---------- 测试用内存实现 ----------

type fakeStockReader struct {
	all           []*model.Stock
	getAllCalled  bool
	searchKeyword string
}

func (f *fakeStockReader) GetAll() ([]*model.Stock, error) {
	f.getAllCalled = true
	return f.all, nil
}

func (f *fakeStockReader) GetBySymbol(symbol string) (*model.Stock, error) {
	for _, stock := range f.all {
		if stock.Symbol == symbol {
			return stock, nil
		}
	}
	return nil, nil
}

func (f *fakeStockReader) Search(keyword string, limit int) ([]*model.Stock, error) {
	f.searchKeyword = keyword
	return f.all[:1], nil
}

type fakePriceReader struct {
	rows []*model.DailyPrice
}

func (f *fakePriceReader) GetRange(stockID uint, start, end time.Time) ([]*model.DailyPrice, error) {
	return f.rows, nil
}

type fakeFactorReader struct {
	latest map[uint]*model.FactorValue
}

func (f *fakeFactorReader) GetLatest(stockID uint) (*model.FactorValue, error) {
	return f.latest[stockID], nil
}

type fakeReadCache struct {
	stocks    []*model.Stock
	factors   map[string]*model.FactorValue
	listSet   bool
	factorSet bool
}

func (f *fakeReadCache) GetStockList() ([]*model.Stock, error) {
	return f.stocks, nil
}

func (f *fakeReadCache) SetStockList(stocks []*model.Stock) error {
	f.stocks = stocks
	f.listSet = true
	return nil
}

func (f *fakeReadCache) GetLatestFactor(symbol string) (*model.FactorValue, error) {
	return f.factors[symbol], nil
}

func (f *fakeReadCache) SetLatestFactor(symbol string, factor *model.FactorValue) error {
	if f.factors == nil {
		f.factors = make(map[string]*model.FactorValue)
	}
	f.factors[symbol] = factor
	f.factorSet = true
	return nil
}

func sampleStocks() []*model.Stock {
	return []*model.Stock{
		{ID: 1, Symbol: "600000", Name: "浦发银行", Market: "SH"},
		{ID: 2, Symbol: "000001", Name: "平安银行", Market: "SZ"},
	}
}

func newTestRouter(stocks *fakeStockReader, prices *fakePriceReader,
	factors *fakeFactorReader, cache *fakeReadCache, mon *monitor.Monitor) *gin.Engine {
	gin.SetMode(gin.TestMode)

	if mon == nil {
		mon = monitor.NewMonitor()
	}
	handlers := NewHandlers(nil, nil, mon, stocks, prices, factors)
	if cache != nil {
		handlers.SetCache(cache)
	}

	server := &Server{router: gin.New()}
	server.SetupRoutes(handlers)
	return server.router
}

func doGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		t.Fatalf("构造请求失败: %v", err)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// ---------- 股票列表读取 ----------

func TestGetStocksCacheMissFallsBackToStore(t *testing.T) {
	stocks := &fakeStockReader{all: sampleStocks()}
	cache := &fakeReadCache{}
	router := newTestRouter(stocks, &fakePriceReader{}, &fakeFactorReader{}, cache, nil)

	rec := doGet(t, router, "/api/v1/stocks")
	if rec.Code != http.StatusOK {
		t.Fatalf("预期200，实际 %d", rec.Code)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("预期2只股票，实际 %d", body.Count)
	}

	if !stocks.getAllCalled {
		t.Error("缓存未命中时应落库查询")
	}
	// 未命中后回填缓存
	if !cache.listSet {
		t.Error("落库后应回填缓存")
	}
}

func TestGetStocksCacheHitSkipsStore(t *testing.T) {
	stocks := &fakeStockReader{all: sampleStocks()}
	cache := &fakeReadCache{stocks: sampleStocks()}
	router := newTestRouter(stocks, &fakePriceReader{}, &fakeFactorReader{}, cache, nil)

	rec := doGet(t, router, "/api/v1/stocks")
	if rec.Code != http.StatusOK {
		t.Fatalf("预期200，实际 %d", rec.Code)
	}
	if stocks.getAllCalled {
		t.Error("缓存命中时不应落库")
	}
}

func TestGetStocksKeywordSearch(t *testing.T) {
	stocks := &fakeStockReader{all: sampleStocks()}
	cache := &fakeReadCache{stocks: sampleStocks()}
	router := newTestRouter(stocks, &fakePriceReader{}, &fakeFactorReader{}, cache, nil)

	rec := doGet(t, router, "/api/v1/stocks?keyword=浦发")
	if rec.Code != http.StatusOK {
		t.Fatalf("预期200，实际 %d", rec.Code)
	}
	if stocks.searchKeyword != "浦发" {
		t.Errorf("搜索关键词不符: %s", stocks.searchKeyword)
	}
}

// ---------- 因子读取 ----------

func TestGetLatestFactorReadThrough(t *testing.T) {
	momentum := 0.12
	stocks := &fakeStockReader{all: sampleStocks()}
	factors := &fakeFactorReader{latest: map[uint]*model.FactorValue{
		1: {StockID: 1, Momentum: &momentum},
	}}
	cache := &fakeReadCache{}
	router := newTestRouter(stocks, &fakePriceReader{}, factors, cache, nil)

	rec := doGet(t, router, "/api/v1/factors/600000")
	if rec.Code != http.StatusOK {
		t.Fatalf("预期200，实际 %d", rec.Code)
	}

	var factor model.FactorValue
	if err := json.Unmarshal(rec.Body.Bytes(), &factor); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if factor.Momentum == nil || *factor.Momentum != 0.12 {
		t.Errorf("因子值不符: %+v", factor)
	}
	// 未命中后回填缓存
	if !cache.factorSet {
		t.Error("落库后应回填因子缓存")
	}
}

func TestGetLatestFactorUnknownSymbol(t *testing.T) {
	stocks := &fakeStockReader{all: sampleStocks()}
	router := newTestRouter(stocks, &fakePriceReader{}, &fakeFactorReader{}, nil, nil)

	if rec := doGet(t, router, "/api/v1/factors/999999"); rec.Code != http.StatusNotFound {
		t.Errorf("未知股票应返回404，实际 %d", rec.Code)
	}
}

// ---------- 日线读取 ----------

func TestGetPrices(t *testing.T) {
	stocks := &fakeStockReader{all: sampleStocks()}
	prices := &fakePriceReader{rows: []*model.DailyPrice{
		{StockID: 1, Close: 7.1},
		{StockID: 1, Close: 7.2},
	}}
	router := newTestRouter(stocks, prices, &fakeFactorReader{}, nil, nil)

	rec := doGet(t, router, "/api/v1/prices/600000?start_date=2024-01-01&end_date=2024-01-31")
	if rec.Code != http.StatusOK {
		t.Fatalf("预期200，实际 %d", rec.Code)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("预期2条日线，实际 %d", body.Count)
	}
}

func TestGetPricesValidation(t *testing.T) {
	stocks := &fakeStockReader{all: sampleStocks()}
	router := newTestRouter(stocks, &fakePriceReader{}, &fakeFactorReader{}, nil, nil)

	if rec := doGet(t, router, "/api/v1/prices/600000?start_date=bad"); rec.Code != http.StatusBadRequest {
		t.Errorf("非法日期应返回400，实际 %d", rec.Code)
	}
	if rec := doGet(t, router, "/api/v1/prices/999999?start_date=2024-01-01&end_date=2024-01-31"); rec.Code != http.StatusNotFound {
		t.Errorf("未知股票应返回404，实际 %d", rec.Code)
	}
}

// ---------- 数据源健康 ----------

func TestGetSourceHealthSingle(t *testing.T) {
	mon := monitor.NewMonitor()
	mon.RegisterComponent("tencent")
	mon.UpdateStatus("tencent", "healthy", "")

	router := newTestRouter(&fakeStockReader{}, &fakePriceReader{}, &fakeFactorReader{}, nil, mon)

	rec := doGet(t, router, "/api/v1/sources/health?source=tencent")
	if rec.Code != http.StatusOK {
		t.Fatalf("预期200，实际 %d", rec.Code)
	}

	var status monitor.HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	if status.Component != "tencent" || status.Status != "healthy" {
		t.Errorf("健康状态不符: %+v", status)
	}

	if rec := doGet(t, router, "/api/v1/sources/health?source=nope"); rec.Code != http.StatusNotFound {
		t.Errorf("未知数据源应返回404，实际 %d", rec.Code)
	}
}
