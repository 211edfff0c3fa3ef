package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TCPAddr      string        `yaml:"tcp_addr"`
	WSAddr       string        `yaml:"ws_addr"`   // 为空则不启动 WebSocket 网关
	HTTPAddr     string        `yaml:"http_addr"` // 为空则不启动 /healthz /metrics
	InboxSize    int           `yaml:"inbox_size"`
	PollInterval time.Duration `yaml:"poll_interval"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxFrameSize int           `yaml:"max_frame_size"`
	LogLevel     string        `yaml:"log_level"`
	LogEncoding  string        `yaml:"log_encoding"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load 读取配置：先读 CHAT_CONFIG 指向的 YAML 文件（可选），再用环境变量覆盖，最后补默认值并校验
func Load() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv("CHAT_CONFIG"); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadFile 读取 YAML 配置文件，支持 ${VAR} 环境变量展开
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.TCPAddr = getEnv("CHAT_TCP_ADDR", c.TCPAddr)
	c.WSAddr = getEnv("CHAT_WS_ADDR", c.WSAddr)
	c.HTTPAddr = getEnv("CHAT_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("CHAT_LOG_LEVEL", c.LogLevel)
	c.LogEncoding = getEnv("CHAT_LOG_ENCODING", c.LogEncoding)

	if v := os.Getenv("CHAT_INBOX_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHAT_INBOX_SIZE: %w", err)
		}
		c.InboxSize = n
	}
	if v := os.Getenv("CHAT_MAX_FRAME_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHAT_MAX_FRAME_SIZE: %w", err)
		}
		c.MaxFrameSize = n
	}
	if v := os.Getenv("CHAT_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHAT_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}
	if v := os.Getenv("CHAT_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CHAT_WRITE_TIMEOUT: %w", err)
		}
		c.WriteTimeout = d
	}
	return nil
}
