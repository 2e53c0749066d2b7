package config

import (
	"os"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "momentum-config-*.yaml")
	if err != nil {
		t.Fatalf("创建临时文件失败: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("写入临时文件失败: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("关闭临时文件失败: %v", err)
	}
	return tmpFile.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: momentum-syncd
  env: dev
data_sources:
  akshare:
    base_url: http://localhost:8080
  tencent:
    quote_url: https://qt.gtimg.cn
    batch_size: 30
sync:
  max_retries: 5
  base_delay: 2s
  max_delay: 1m
  timeout: 30s
  trailing_days: 7
database:
  postgres:
    host: localhost
    port: 5432
    user: postgres
    dbname: momentum
redis:
  addr: localhost:6379
  ttl: 10m
api:
  port: "8000"
  read_timeout: 10s
  write_timeout: 30s
scheduler:
  daily_spec: "0 35 15 * * 1-5"
`)

	os.Unsetenv("DB_HOST")
	os.Unsetenv("API_PORT")
	os.Unsetenv("AKSHARE_BASE_URL")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}

	if cfg.App.Name != "momentum-syncd" {
		t.Errorf("App.Name = %q", cfg.App.Name)
	}
	if cfg.DataSources.Tencent.BatchSize != 30 {
		t.Errorf("Tencent.BatchSize = %d", cfg.DataSources.Tencent.BatchSize)
	}

	// 时长字段按"2s"风格解析
	if cfg.Sync.BaseDelay.Std() != 2*time.Second {
		t.Errorf("Sync.BaseDelay = %v", cfg.Sync.BaseDelay.Std())
	}
	if cfg.Sync.MaxDelay.Std() != time.Minute {
		t.Errorf("Sync.MaxDelay = %v", cfg.Sync.MaxDelay.Std())
	}
	if cfg.Redis.TTL.Std() != 10*time.Minute {
		t.Errorf("Redis.TTL = %v", cfg.Redis.TTL.Std())
	}
	if cfg.Sync.MaxRetries != 5 {
		t.Errorf("Sync.MaxRetries = %d", cfg.Sync.MaxRetries)
	}
	if cfg.Sync.TrailingDays != 7 {
		t.Errorf("Sync.TrailingDays = %d", cfg.Sync.TrailingDays)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeTempConfig(t, `
app:
  name: momentum-syncd
database:
  postgres:
    host: localhost
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}

	if cfg.Sync.MaxRetries != 3 {
		t.Errorf("默认重试次数应为3，实际 %d", cfg.Sync.MaxRetries)
	}
	if cfg.Sync.BaseDelay.Std() != time.Second {
		t.Errorf("默认基础延迟应为1s，实际 %v", cfg.Sync.BaseDelay.Std())
	}
	if cfg.Sync.TrailingDays != 3 {
		t.Errorf("默认回看天数应为3，实际 %d", cfg.Sync.TrailingDays)
	}
	if cfg.DataSources.Tencent.BatchSize != 50 {
		t.Errorf("默认批次大小应为50，实际 %d", cfg.DataSources.Tencent.BatchSize)
	}
	if cfg.Scheduler.DailySpec != "0 35 15 * * 1-5" {
		t.Errorf("默认调度表达式不符: %s", cfg.Scheduler.DailySpec)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeTempConfig(t, `
database:
  postgres:
    host: yaml-host
    user: yaml-user
api:
  port: "8000"
`)

	os.Setenv("DB_HOST", "env-host")
	os.Setenv("API_PORT", "9000")
	defer os.Unsetenv("DB_HOST")
	defer os.Unsetenv("API_PORT")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig失败: %v", err)
	}

	if cfg.Database.Postgres.Host != "env-host" {
		t.Errorf("DB_HOST覆盖失败: %s", cfg.Database.Postgres.Host)
	}
	// 未设置环境变量的字段保持yaml值
	if cfg.Database.Postgres.User != "yaml-user" {
		t.Errorf("User应保持yaml值: %s", cfg.Database.Postgres.User)
	}
	if cfg.API.Port != "9000" {
		t.Errorf("API_PORT覆盖失败: %s", cfg.API.Port)
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	path := writeTempConfig(t, `
sync:
  base_delay: not-a-duration
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("非法时长应报错")
	}
}
