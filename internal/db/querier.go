// 本文件由 sqlc 自动生成。请勿手动编辑。
// 版本信息:
//   sqlc v1.30.0

package db

import (
	"context"
)

// Querier 定义了数据库查询接口，包含所有数据库操作方法
type Querier interface {
	// CreateChatTurn 创建新的对话轮次记录
	CreateChatTurn(ctx context.Context, arg CreateChatTurnParams) (ChatHistory, error)
	// CreateUsageRecord 创建新的令牌用量记录
	CreateUsageRecord(ctx context.Context, arg CreateUsageRecordParams) (UsageHistory, error)
	// DeleteChat 删除指定会话的全部对话记录
	DeleteChat(ctx context.Context, chatID string) error
	// DeleteChatGroup 删除指定对话组的记录
	DeleteChatGroup(ctx context.Context, groupID string) error
	// GetPreferredSearchEngine 获取首选搜索引擎（seq 最小的行）
	GetPreferredSearchEngine(ctx context.Context) (SearchEngine, error)
	// GetUsageByModel 按模型聚合令牌用量
	GetUsageByModel(ctx context.Context) ([]GetUsageByModelRow, error)
	// GetUserSettings 获取用户通用设置
	GetUserSettings(ctx context.Context) (UserSetting, error)
	// ListChatTurns 按时间顺序列出指定会话的全部对话轮次
	ListChatTurns(ctx context.Context, chatID string) ([]ChatHistory, error)
	// ListSearchEngines 按排序序号列出所有搜索引擎
	ListSearchEngines(ctx context.Context) ([]SearchEngine, error)
	// UpdateSearchEngineConfig 更新指定搜索引擎的配置
	UpdateSearchEngineConfig(ctx context.Context, arg UpdateSearchEngineConfigParams) error
	// UpdateUserSettings 更新用户通用设置
	UpdateUserSettings(ctx context.Context, arg UpdateUserSettingsParams) error
}

var _ Querier = (*Queries)(nil)
