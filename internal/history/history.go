// Package history 提供对话历史与用量记录的持久化服务。
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/purpose168/deskchat-cn/internal/db"
	"github.com/purpose168/deskchat-cn/internal/message"
	"github.com/purpose168/deskchat-cn/internal/pubsub"
)

// ChatTurn 是一轮完整的对话：一条用户消息加上一条助手回答
type ChatTurn struct {
	ID               string            // 记录唯一标识符
	ChatID           string            // 所属会话 ID
	GroupID          string            // 对话组 ID
	Title            string            // 会话标题
	Channel          string            // 渠道代码
	Model            string            // 模型名称
	UserContent      string            // 用户消息内容
	AssistantContent string            // 助手回答内容
	Images           []string          // 图片列表
	Files            []message.FileRef // 文件列表
	CreatedAt        time.Time         // 创建时间
}

// SaveTurnParams 保存一轮对话的参数
type SaveTurnParams struct {
	ChatID           string
	GroupID          string
	Title            string
	Channel          string
	Model            string
	UserContent      string
	AssistantContent string
	Images           []string
	Files            []message.FileRef
}

// UsageSummary 是按模型聚合的用量统计
type UsageSummary struct {
	Model        string `json:"model"`         // 模型名称
	Records      int64  `json:"records"`       // 记录条数
	InputTokens  int64  `json:"input_tokens"`  // 输入令牌总数
	OutputTokens int64  `json:"output_tokens"` // 输出令牌总数
}

// Settings 是用户通用设置
type Settings struct {
	IsStream      bool  `json:"is_stream"`      // 是否启用流式输出
	HistoryLength int64 `json:"history_length"` // 每次请求保留的最近对话组数量
}

// EngineSetting 是一条搜索引擎配置
type EngineSetting struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Config string `json:"config"` // JSON 格式的引擎配置
	Seq    int64  `json:"seq"`
}

// Service 对话历史服务接口
type Service interface {
	pubsub.Subscriber[ChatTurn]
	// SaveTurn 保存一轮对话
	SaveTurn(ctx context.Context, params SaveTurnParams) (ChatTurn, error)
	// SaveUsage 保存一条用量记录
	SaveUsage(ctx context.Context, groupID, model string, inputTokens, outputTokens int64) error
	// ListTurns 按时间顺序列出指定会话的全部对话轮次
	ListTurns(ctx context.Context, chatID string) ([]ChatTurn, error)
	// DeleteChat 删除指定会话的全部记录
	DeleteChat(ctx context.Context, chatID string) error
	// DeleteGroup 删除指定对话组的记录
	DeleteGroup(ctx context.Context, groupID string) error
	// UsageByModel 按模型聚合用量
	UsageByModel(ctx context.Context) ([]UsageSummary, error)
	// PreferredSearchEngine 返回首选搜索引擎的名称与配置
	PreferredSearchEngine(ctx context.Context) (name, config string, err error)
	// ListSearchEngines 列出全部搜索引擎配置
	ListSearchEngines(ctx context.Context) ([]EngineSetting, error)
	// UpdateSearchEngineConfig 更新指定搜索引擎的配置
	UpdateSearchEngineConfig(ctx context.Context, id int64, config string) error
	// GeneralSettings 返回用户通用设置
	GeneralSettings(ctx context.Context) (Settings, error)
	// UpdateGeneralSettings 更新用户通用设置
	UpdateGeneralSettings(ctx context.Context, settings Settings) error
}

type service struct {
	*pubsub.Broker[ChatTurn]
	q db.Querier
}

// NewService 创建对话历史服务实例
func NewService(q db.Querier) Service {
	return &service{
		Broker: pubsub.NewBroker[ChatTurn](),
		q:      q,
	}
}

// SaveTurn 保存一轮对话并发布创建事件
func (s *service) SaveTurn(ctx context.Context, params SaveTurnParams) (ChatTurn, error) {
	imageJSON, err := json.Marshal(orEmpty(params.Images))
	if err != nil {
		return ChatTurn{}, fmt.Errorf("序列化图片列表失败: %w", err)
	}
	fileJSON, err := json.Marshal(orEmpty(params.Files))
	if err != nil {
		return ChatTurn{}, fmt.Errorf("序列化文件列表失败: %w", err)
	}

	row, err := s.q.CreateChatTurn(ctx, db.CreateChatTurnParams{
		ID:               uuid.New().String(),
		ChatID:           params.ChatID,
		GroupID:          params.GroupID,
		ChatTitle:        params.Title,
		ChannelCode:      params.Channel,
		ModelName:        params.Model,
		UserContent:      params.UserContent,
		AssistantContent: params.AssistantContent,
		ImageList:        string(imageJSON),
		FileList:         string(fileJSON),
	})
	if err != nil {
		return ChatTurn{}, err
	}

	turn, err := fromDBItem(row)
	if err != nil {
		return ChatTurn{}, err
	}
	s.Publish(pubsub.CreatedEvent, turn)
	return turn, nil
}

// SaveUsage 保存一条用量记录
func (s *service) SaveUsage(ctx context.Context, groupID, model string, inputTokens, outputTokens int64) error {
	_, err := s.q.CreateUsageRecord(ctx, db.CreateUsageRecordParams{
		ID:           uuid.New().String(),
		GroupID:      groupID,
		ModelName:    model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	})
	return err
}

// ListTurns 按时间顺序列出指定会话的全部对话轮次
func (s *service) ListTurns(ctx context.Context, chatID string) ([]ChatTurn, error) {
	rows, err := s.q.ListChatTurns(ctx, chatID)
	if err != nil {
		return nil, err
	}
	turns := make([]ChatTurn, 0, len(rows))
	for _, row := range rows {
		turn, err := fromDBItem(row)
		if err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// DeleteChat 删除指定会话的全部记录并发布删除事件
func (s *service) DeleteChat(ctx context.Context, chatID string) error {
	if err := s.q.DeleteChat(ctx, chatID); err != nil {
		return err
	}
	s.Publish(pubsub.DeletedEvent, ChatTurn{ChatID: chatID})
	return nil
}

// DeleteGroup 删除指定对话组的记录并发布删除事件
func (s *service) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.q.DeleteChatGroup(ctx, groupID); err != nil {
		return err
	}
	s.Publish(pubsub.DeletedEvent, ChatTurn{GroupID: groupID})
	return nil
}

// UsageByModel 按模型聚合用量
func (s *service) UsageByModel(ctx context.Context) ([]UsageSummary, error) {
	rows, err := s.q.GetUsageByModel(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UsageSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, UsageSummary{
			Model:        row.ModelName,
			Records:      row.RecordCount,
			InputTokens:  row.InputTokens,
			OutputTokens: row.OutputTokens,
		})
	}
	return out, nil
}

// PreferredSearchEngine 返回 seq 最小的搜索引擎
func (s *service) PreferredSearchEngine(ctx context.Context) (string, string, error) {
	engine, err := s.q.GetPreferredSearchEngine(ctx)
	if err != nil {
		return "", "", fmt.Errorf("获取首选搜索引擎失败: %w", err)
	}
	return engine.Name, engine.Config, nil
}

// ListSearchEngines 列出全部搜索引擎配置
func (s *service) ListSearchEngines(ctx context.Context) ([]EngineSetting, error) {
	rows, err := s.q.ListSearchEngines(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]EngineSetting, 0, len(rows))
	for _, row := range rows {
		out = append(out, EngineSetting{
			ID:     row.ID,
			Name:   row.Name,
			Config: row.Config,
			Seq:    row.Seq,
		})
	}
	return out, nil
}

// UpdateSearchEngineConfig 更新指定搜索引擎的配置
func (s *service) UpdateSearchEngineConfig(ctx context.Context, id int64, config string) error {
	if !json.Valid([]byte(config)) {
		return fmt.Errorf("引擎配置不是合法的 JSON")
	}
	return s.q.UpdateSearchEngineConfig(ctx, db.UpdateSearchEngineConfigParams{
		ID:     id,
		Config: config,
	})
}

// GeneralSettings 返回用户通用设置
func (s *service) GeneralSettings(ctx context.Context) (Settings, error) {
	row, err := s.q.GetUserSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("获取用户设置失败: %w", err)
	}
	return Settings{
		IsStream:      row.IsStream != 0,
		HistoryLength: row.HistoryLength,
	}, nil
}

// UpdateGeneralSettings 更新用户通用设置
func (s *service) UpdateGeneralSettings(ctx context.Context, settings Settings) error {
	isStream := int64(0)
	if settings.IsStream {
		isStream = 1
	}
	return s.q.UpdateUserSettings(ctx, db.UpdateUserSettingsParams{
		IsStream:      isStream,
		HistoryLength: settings.HistoryLength,
	})
}

// fromDBItem 把数据库记录转换为领域对象
func fromDBItem(row db.ChatHistory) (ChatTurn, error) {
	turn := ChatTurn{
		ID:               row.ID,
		ChatID:           row.ChatID,
		GroupID:          row.GroupID,
		Title:            row.ChatTitle,
		Channel:          row.ChannelCode,
		Model:            row.ModelName,
		UserContent:      row.UserContent,
		AssistantContent: row.AssistantContent,
		CreatedAt:        time.Unix(row.CreatedAt, 0),
	}
	if row.ImageList != "" {
		if err := json.Unmarshal([]byte(row.ImageList), &turn.Images); err != nil {
			return ChatTurn{}, fmt.Errorf("解析图片列表失败: %w", err)
		}
	}
	if row.FileList != "" {
		if err := json.Unmarshal([]byte(row.FileList), &turn.Files); err != nil {
			return ChatTurn{}, fmt.Errorf("解析文件列表失败: %w", err)
		}
	}
	return turn, nil
}

// orEmpty 把 nil 切片替换为空切片，保证序列化结果是 [] 而不是 null
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
