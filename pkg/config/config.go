package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 配置中的时长字段，支持"30s"风格的字符串
type Duration time.Duration

// UnmarshalYAML 实现yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("无法解析时长 %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std 转换为time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	DataSources struct {
		AKShare struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"akshare"`
		Tencent struct {
			QuoteURL  string `yaml:"quote_url"`
			KlineURL  string `yaml:"kline_url"`
			BatchSize int    `yaml:"batch_size"`
		} `yaml:"tencent"`
		EastMoney struct {
			ListURL  string `yaml:"list_url"`
			KlineURL string `yaml:"kline_url"`
		} `yaml:"eastmoney"`
		Sina struct {
			ListURL  string `yaml:"list_url"`
			KlineURL string `yaml:"kline_url"`
			Pages    int    `yaml:"pages"`
		} `yaml:"sina"`
	} `yaml:"data_sources"`

	Sync struct {
		MaxRetries   int      `yaml:"max_retries"`
		BaseDelay    Duration `yaml:"base_delay"`
		MaxDelay     Duration `yaml:"max_delay"`
		Timeout      Duration `yaml:"timeout"`
		TrailingDays int      `yaml:"trailing_days"`
	} `yaml:"sync"`

	Database struct {
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"database"`

	Redis struct {
		Addr     string   `yaml:"addr"`
		Password string   `yaml:"password"`
		DB       int      `yaml:"db"`
		TTL      Duration `yaml:"ttl"`
	} `yaml:"redis"`

	NATS struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"client_id"`
	} `yaml:"nats"`

	API struct {
		Port         string   `yaml:"port"`
		ReadTimeout  Duration `yaml:"read_timeout"`
		WriteTimeout Duration `yaml:"write_timeout"`
	} `yaml:"api"`

	Scheduler struct {
		DailySpec string `yaml:"daily_spec"`
	} `yaml:"scheduler"`
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量覆盖
	overrideFromEnv(&config)

	// 填充默认值
	applyDefaults(&config)

	return &config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用名称
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}

	// 环境
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}

	// AKShare服务地址
	if env := os.Getenv("AKSHARE_BASE_URL"); env != "" {
		config.DataSources.AKShare.BaseURL = env
	}

	// 数据库配置
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Postgres.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.Postgres.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.Postgres.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Postgres.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.Postgres.DBName = env
	}

	// Redis配置
	if env := os.Getenv("REDIS_ADDR"); env != "" {
		config.Redis.Addr = env
	}
	if env := os.Getenv("REDIS_PASSWORD"); env != "" {
		config.Redis.Password = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}
	if env := os.Getenv("NATS_CLIENT_ID"); env != "" {
		config.NATS.ClientID = env
	}

	// API配置
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
}

// applyDefaults 填充缺省配置
func applyDefaults(config *Config) {
	if config.Sync.MaxRetries <= 0 {
		config.Sync.MaxRetries = 3
	}
	if config.Sync.BaseDelay <= 0 {
		config.Sync.BaseDelay = Duration(time.Second)
	}
	if config.Sync.MaxDelay <= 0 {
		config.Sync.MaxDelay = Duration(30 * time.Second)
	}
	if config.Sync.Timeout <= 0 {
		config.Sync.Timeout = Duration(30 * time.Second)
	}
	if config.Sync.TrailingDays <= 0 {
		config.Sync.TrailingDays = 3
	}
	if config.DataSources.Tencent.BatchSize <= 0 {
		config.DataSources.Tencent.BatchSize = 50
	}
	if config.DataSources.Sina.Pages <= 0 {
		config.DataSources.Sina.Pages = 5
	}
	if config.Redis.TTL <= 0 {
		config.Redis.TTL = Duration(5 * time.Minute)
	}
	if config.API.ReadTimeout <= 0 {
		config.API.ReadTimeout = Duration(10 * time.Second)
	}
	if config.API.WriteTimeout <= 0 {
		config.API.WriteTimeout = Duration(30 * time.Second)
	}
	if config.Scheduler.DailySpec == "" {
		// 每个交易日15:35收盘后触发
		config.Scheduler.DailySpec = "0 35 15 * * 1-5"
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
