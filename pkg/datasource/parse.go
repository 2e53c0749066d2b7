package datasource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func decodeJSON(body []byte, out interface{}) error {
	return json.Unmarshal(body, out)
}

// parseFloat 将接口类型转换为float64，无法转换时返回0
func parseFloat(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return f
	default:
		return 0
	}
}

// parseFloatPtr 同parseFloat，但空值和非法值返回nil
func parseFloatPtr(v interface{}) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case float32:
		f := float64(value)
		return &f
	case int:
		f := float64(value)
		return &f
	case int64:
		f := float64(value)
		return &f
	case string:
		s := strings.TrimSpace(value)
		if s == "" || s == "-" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// parseDate 解析常见的日期格式
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "20060102", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", s)
}

// marketOf 按代码前缀判断市场: 6开头为沪市，其余为深市
func marketOf(symbol string) string {
	if strings.HasPrefix(symbol, "6") {
		return "SH"
	}
	return "SZ"
}

// exchangePrefix 返回行情接口使用的交易所前缀(sh/sz)
func exchangePrefix(symbol string) string {
	if strings.HasPrefix(symbol, "6") {
		return "sh"
	}
	return "sz"
}
