package datasource

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// ErrSourceUnavailable 重试次数耗尽后数据源不可用
var ErrSourceUnavailable = errors.New("数据源不可用")

// User-Agent轮换池，降低被上游反爬机制拦截的概率
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/120.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (iPad; CPU OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/120.0 Safari/605.1",
}

// 请求头模板
var headersTemplate = map[string]string{
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
	"Connection":      "keep-alive",
	"DNT":             "1",
}

// Client 带重试和防反爬机制的HTTP客户端
// 仅承担传输职责，不触碰任何持久化状态
type Client struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration

	// 测试时替换以避免真实等待
	sleep func(time.Duration)
	randf func() float64
}

// NewClient 创建新的请求客户端
func NewClient(maxRetries int, baseDelay, maxDelay, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		sleep:      time.Sleep,
		randf:      rand.Float64,
	}
}

// Get 执行带重试的GET请求，返回响应体
// 429等限流信号和连接错误按指数退避重试，重试耗尽返回ErrSourceUnavailable
func (c *Client) Get(rawURL string, params url.Values) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		// 随机短延迟，模拟人工访问节奏
		c.sleep(c.randomDelay(300*time.Millisecond, time.Second))

		body, retryable, err := c.doOnce(rawURL, params)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// 最后一次尝试失败后直接返回，不再退避
		if attempt == c.maxRetries-1 {
			break
		}

		base := c.baseDelay
		if retryable {
			// 限流信号退避起点更高，给上游足够的冷却时间
			base = 5 * c.baseDelay
		}
		c.sleep(c.backoffDelay(attempt, base))
	}

	return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, lastErr)
}

// GetJSON 执行GET请求并解析JSON响应
func (c *Client) GetJSON(rawURL string, params url.Values, out interface{}) error {
	body, err := c.Get(rawURL, params)
	if err != nil {
		return err
	}
	if err := decodeJSON(body, out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

// doOnce 单次请求。retryable为true表示命中限流信号
func (c *Client) doOnce(rawURL string, params url.Values) ([]byte, bool, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	// 每次请求随机更换身份头
	for key, value := range headersTemplate {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 连接层失败，走退避重试
		return nil, false, fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("触发限流: HTTP %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("API返回非200状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("读取响应体失败: %w", err)
	}

	return body, false, nil
}

// backoffDelay 指数退避: min(base*2^attempt + jitter, maxDelay)
func (c *Client) backoffDelay(attempt int, base time.Duration) time.Duration {
	delay := base*(1<<uint(attempt)) + time.Duration(c.randf()*float64(time.Second))
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

// randomDelay 返回[min, max)内的随机延迟
func (c *Client) randomDelay(min, max time.Duration) time.Duration {
	return min + time.Duration(c.randf()*float64(max-min))
}
