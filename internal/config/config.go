// Package config 负责加载应用配置：数据目录、渠道与环境变量覆盖。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/purpose168/deskchat-cn/internal/home"
)

// 配置文件名，位于数据目录下
const configFileName = "deskchat.json"

// Channel 是一个模型渠道的连接配置
type Channel struct {
	Channel   string `json:"channel"`              // 渠道编码（openai、anthropic）
	BaseURL   string `json:"base_url,omitempty"`   // 接口地址
	APIKey    string `json:"api_key,omitempty"`    // 鉴权密钥
	Model     string `json:"model"`                // 模型名称
	MaxTokens int64  `json:"max_tokens,omitempty"` // 单次生成的输出上限
}

// Config 是应用的完整配置
type Config struct {
	DataDir        string             `json:"-"`               // 数据目录
	Debug          bool               `json:"-"`               // 调试模式
	DefaultChannel string             `json:"default_channel"` // 默认渠道名
	Channels       map[string]Channel `json:"channels"`        // 渠道表，键为渠道名
}

// ErrNoChannel 表示配置中没有可用的渠道
var ErrNoChannel = errors.New("配置中没有可用的渠道")

// Init 加载配置。查找顺序：
// 显式 dataDir 参数 > DESKCHAT_DATA_DIR 环境变量 > 用户配置目录。
// 数据目录下的 deskchat.json 为基础配置，环境变量覆盖其中的密钥与地址。
func Init(dataDir string, debug bool) (*Config, error) {
	if dataDir == "" {
		dataDir = os.Getenv("DESKCHAT_DATA_DIR")
	}
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("定位用户配置目录失败: %w", err)
		}
		dataDir = filepath.Join(base, "deskchat")
	}
	dataDir = home.Long(dataDir)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %q %w", dataDir, err)
	}

	cfg := &Config{
		DataDir:  dataDir,
		Debug:    debug,
		Channels: map[string]Channel{},
	}

	raw, err := os.ReadFile(filepath.Join(dataDir, configFileName))
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// 没有配置文件时完全依赖环境变量
	default:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	applyEnv(cfg)

	if cfg.DefaultChannel == "" {
		// 配置了哪个渠道的密钥就默认用哪个
		for _, name := range []string{"openai", "anthropic"} {
			if ch, ok := cfg.Channels[name]; ok && ch.APIKey != "" {
				cfg.DefaultChannel = name
				break
			}
		}
	}
	return cfg, nil
}

// applyEnv 用环境变量补充或覆盖渠道配置
func applyEnv(cfg *Config) {
	overlay := func(name, channel, keyEnv, urlEnv, modelEnv, defaultModel string) {
		ch := cfg.Channels[name]
		if ch.Channel == "" {
			ch.Channel = channel
		}
		if v := os.Getenv(keyEnv); v != "" {
			ch.APIKey = v
		}
		if v := os.Getenv(urlEnv); v != "" {
			ch.BaseURL = v
		}
		if v := os.Getenv(modelEnv); v != "" {
			ch.Model = v
		}
		if ch.Model == "" {
			ch.Model = defaultModel
		}
		// 没有任何配置来源的渠道不落表
		if ch.APIKey == "" && cfg.Channels[name].Channel == "" {
			return
		}
		cfg.Channels[name] = ch
	}
	overlay("openai", "openai", "OPENAI_API_KEY", "OPENAI_BASE_URL", "DESKCHAT_OPENAI_MODEL", "gpt-4o-mini")
	overlay("anthropic", "anthropic", "ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "DESKCHAT_ANTHROPIC_MODEL", "claude-3-opus-20240229")
	if v := os.Getenv("DESKCHAT_CHANNEL"); v != "" {
		cfg.DefaultChannel = v
	}
}

// Resolve 返回指定名称的渠道，名称为空时返回默认渠道
func (c *Config) Resolve(name string) (Channel, error) {
	if name == "" {
		name = c.DefaultChannel
	}
	if name == "" {
		return Channel{}, ErrNoChannel
	}
	ch, ok := c.Channels[name]
	if !ok {
		return Channel{}, fmt.Errorf("未配置的渠道: %s", name)
	}
	return ch, nil
}
