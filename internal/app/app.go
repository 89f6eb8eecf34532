// Package app 组装应用的各项服务并管理它们的生命周期。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/purpose168/deskchat-cn/internal/chat"
	"github.com/purpose168/deskchat-cn/internal/config"
	"github.com/purpose168/deskchat-cn/internal/db"
	"github.com/purpose168/deskchat-cn/internal/history"
	"github.com/purpose168/deskchat-cn/internal/log"
	"github.com/purpose168/deskchat-cn/internal/provider"
	"github.com/purpose168/deskchat-cn/internal/search"
)

// App 持有应用的全部服务
type App struct {
	History history.Service // 对话历史服务
	Chat    *chat.Service   // 会话调度服务
	Search  *search.Dispatcher

	cfg  *config.Config
	conn *sql.DB
	q    *db.Queries
}

// New 基于配置与数据库连接组装应用。
// channelName 为空时使用配置中的默认渠道。
func New(ctx context.Context, conn *sql.DB, cfg *config.Config, channelName string) (*App, error) {
	q, err := db.Prepare(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("准备数据库语句失败: %w", err)
	}

	hist := history.NewService(q)
	dispatcher := search.NewDispatcher(hist)

	ch, err := cfg.Resolve(channelName)
	if err != nil {
		return nil, err
	}
	providerCfg := provider.Config{
		BaseURL:   ch.BaseURL,
		APIKey:    ch.APIKey,
		Model:     ch.Model,
		MaxTokens: ch.MaxTokens,
	}
	if cfg.Debug {
		// 调试模式下记录与服务商之间的完整请求与响应
		providerCfg.Client = log.NewHTTPClient()
	}
	chatSvc, err := chat.New(ch.Channel, providerCfg, hist, dispatcher)
	if err != nil {
		return nil, err
	}

	return &App{
		History: hist,
		Chat:    chatSvc,
		Search:  dispatcher,
		cfg:     cfg,
		conn:    conn,
		q:       q,
	}, nil
}

// Config 返回应用配置
func (a *App) Config() *config.Config {
	return a.cfg
}

// Shutdown 释放数据库资源
func (a *App) Shutdown() {
	if err := a.q.Close(); err != nil {
		slog.Error("关闭预编译语句失败", "error", err)
	}
	if err := a.conn.Close(); err != nil {
		slog.Error("关闭数据库连接失败", "error", err)
	}
}
