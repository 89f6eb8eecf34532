// 由 sqlc 自动生成的代码。请勿手动编辑。
// 版本信息:
//   sqlc v1.30.0

package db

// ChatHistory 表示聊天历史记录的结构体
// 一条记录对应一轮对话：一条用户消息加上一条助手回答
type ChatHistory struct {
	ID               string `json:"id"`                // 记录唯一标识符
	ChatID           string `json:"chat_id"`           // 所属会话的ID
	GroupID          string `json:"group_id"`          // 对话组ID（用于界面分组与历史裁剪）
	ChatTitle        string `json:"chat_title"`        // 会话标题
	ChannelCode      string `json:"channel_code"`      // 渠道代码（如openai、anthropic）
	ModelName        string `json:"model_name"`        // 使用的模型名称
	UserContent      string `json:"user_content"`      // 用户消息内容
	AssistantContent string `json:"assistant_content"` // 助手回答内容
	ImageList        string `json:"image_list"`        // 图片列表（JSON格式）
	FileList         string `json:"file_list"`         // 文件列表（JSON格式）
	CreatedAt        int64  `json:"created_at"`        // 创建时间戳（Unix时间戳）
}

// UsageHistory 表示令牌用量记录的结构体
// 用于统计各模型的输入/输出令牌消耗
type UsageHistory struct {
	ID           string `json:"id"`            // 记录唯一标识符
	GroupID      string `json:"group_id"`      // 对话组ID
	ModelName    string `json:"model_name"`    // 使用的模型名称
	InputTokens  int64  `json:"input_tokens"`  // 输入令牌数
	OutputTokens int64  `json:"output_tokens"` // 输出令牌数
	CreatedAt    int64  `json:"created_at"`    // 创建时间戳（Unix时间戳）
}

// SearchEngine 表示搜索引擎配置的结构体
// seq 最小的行为首选搜索引擎
type SearchEngine struct {
	ID     int64  `json:"id"`     // 自增主键
	Name   string `json:"name"`   // 引擎名称（如Localhost、Serper）
	Config string `json:"config"` // 引擎配置（JSON格式）
	Seq    int64  `json:"seq"`    // 排序序号
}

// UserSetting 表示用户通用设置的结构体
// 单行表，id 固定为 1
type UserSetting struct {
	ID            int64 `json:"id"`             // 固定为 1
	IsStream      int64 `json:"is_stream"`      // 是否启用流式输出（0: 否, 1: 是）
	HistoryLength int64 `json:"history_length"` // 每次请求保留的最近对话组数量
}
