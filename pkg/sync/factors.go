package sync

import (
	"math"
	"time"

	"Momentum/pkg/model"
)

// 因子计算窗口
const factorWindow = 20

// FactorPoint 单个交易日的因子值
type FactorPoint struct {
	Date       time.Time
	Momentum   float64
	Volatility float64
	Liquidity  float64
}

// ComputeFactors 基于日线序列计算衍生因子
// 动量=20日涨幅，波动率=日收益率20日滚动标准差，流动性=成交量20日均值
// 历史不足导致的未定义值一律取0
func ComputeFactors(bars []model.BarRow) []FactorPoint {
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	momentum := pctChange(closes, factorWindow)
	volatility := rollingStd(pctChange(closes, 1), factorWindow)
	liquidity := rollingMean(volumes, factorWindow)

	points := make([]FactorPoint, len(bars))
	for i, bar := range bars {
		points[i] = FactorPoint{
			Date:       bar.TradeDate,
			Momentum:   zeroIfNaN(momentum[i]),
			Volatility: volatility[i],
			Liquidity:  liquidity[i],
		}
	}
	return points
}

// pctChange N期百分比变化，前N个位置未定义，以NaN占位
func pctChange(values []float64, periods int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < periods || values[i-periods] == 0 {
			result[i] = math.NaN()
			continue
		}
		result[i] = values[i]/values[i-periods] - 1
	}
	return result
}

// rollingStd 滚动样本标准差，窗口内含未定义值时结果未定义
// 返回值中的未定义位置已归零
func rollingStd(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			continue
		}

		sum, valid := 0.0, true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				valid = false
				break
			}
			sum += values[j]
		}
		if !valid {
			continue
		}

		mean := sum / float64(window)
		var sq float64
		for j := i - window + 1; j <= i; j++ {
			sq += (values[j] - mean) * (values[j] - mean)
		}
		result[i] = math.Sqrt(sq / float64(window-1))
	}
	return result
}

// rollingMean 滚动均值，窗口不满时取0
func rollingMean(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	var sum float64
	for i := range values {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result[i] = sum / float64(window)
		}
	}
	return result
}

// zeroIfNaN NaN归零
func zeroIfNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
