// 由 sqlc 自动生成的代码。请勿编辑。
// 版本：
//   sqlc v1.30.0
// 源文件：chat_history.sql

package db

import (
	"context"
)

const createChatTurn = `-- 名称: CreateChatTurn :one
-- 功能: 创建新的对话轮次记录
-- 说明: 向 chat_history 表插入一轮对话，并返回完整的记录
INSERT INTO chat_history (
    id,
    chat_id,
    group_id,
    chat_title,
    channel_code,
    model_name,
    user_content,
    assistant_content,
    image_list,
    file_list,
    created_at
) VALUES (
    ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, strftime('%s', 'now')
)
RETURNING id, chat_id, group_id, chat_title, channel_code, model_name, user_content, assistant_content, image_list, file_list, created_at
`

// CreateChatTurnParams 创建对话轮次的参数结构体
// 包含创建一轮对话记录所需的所有字段
type CreateChatTurnParams struct {
	ID               string `json:"id"`                // 记录唯一标识符
	ChatID           string `json:"chat_id"`           // 会话唯一标识符
	GroupID          string `json:"group_id"`          // 对话组唯一标识符
	ChatTitle        string `json:"chat_title"`        // 会话标题
	ChannelCode      string `json:"channel_code"`      // 渠道代码
	ModelName        string `json:"model_name"`        // 模型名称
	UserContent      string `json:"user_content"`      // 用户消息内容
	AssistantContent string `json:"assistant_content"` // 助手回答内容
	ImageList        string `json:"image_list"`        // 图片列表（JSON 格式）
	FileList         string `json:"file_list"`         // 文件列表（JSON 格式）
}

// CreateChatTurn 创建新的对话轮次记录
// 参数: ctx - 上下文对象，arg - 创建记录所需的参数
// 返回: 创建成功的 ChatHistory 对象和可能的错误
func (q *Queries) CreateChatTurn(ctx context.Context, arg CreateChatTurnParams) (ChatHistory, error) {
	row := q.queryRow(ctx, q.createChatTurnStmt, createChatTurn,
		arg.ID,
		arg.ChatID,
		arg.GroupID,
		arg.ChatTitle,
		arg.ChannelCode,
		arg.ModelName,
		arg.UserContent,
		arg.AssistantContent,
		arg.ImageList,
		arg.FileList,
	)
	var i ChatHistory
	err := row.Scan(
		&i.ID,
		&i.ChatID,
		&i.GroupID,
		&i.ChatTitle,
		&i.ChannelCode,
		&i.ModelName,
		&i.UserContent,
		&i.AssistantContent,
		&i.ImageList,
		&i.FileList,
		&i.CreatedAt,
	)
	return i, err
}

const deleteChat = `-- 名称: DeleteChat :exec
-- 功能: 删除指定会话的全部对话记录
DELETE FROM chat_history
WHERE chat_id = ?
`

// DeleteChat 删除指定会话的全部对话记录
// 参数: ctx - 上下文对象，chatID - 要删除的会话 ID
// 返回: 可能的错误
func (q *Queries) DeleteChat(ctx context.Context, chatID string) error {
	_, err := q.exec(ctx, q.deleteChatStmt, deleteChat, chatID)
	return err
}

const deleteChatGroup = `-- 名称: DeleteChatGroup :exec
-- 功能: 删除指定对话组的记录
DELETE FROM chat_history
WHERE group_id = ?
`

// DeleteChatGroup 删除指定对话组的记录
// 参数: ctx - 上下文对象，groupID - 要删除的对话组 ID
// 返回: 可能的错误
func (q *Queries) DeleteChatGroup(ctx context.Context, groupID string) error {
	_, err := q.exec(ctx, q.deleteChatGroupStmt, deleteChatGroup, groupID)
	return err
}

const listChatTurns = `-- 名称: ListChatTurns :many
-- 功能: 按时间顺序列出指定会话的全部对话轮次
SELECT id, chat_id, group_id, chat_title, channel_code, model_name, user_content, assistant_content, image_list, file_list, created_at
FROM chat_history
WHERE chat_id = ?
ORDER BY created_at ASC
`

// ListChatTurns 按时间顺序列出指定会话的全部对话轮次
// 参数: ctx - 上下文对象，chatID - 会话 ID
// 返回: 查询到的 ChatHistory 列表和可能的错误
func (q *Queries) ListChatTurns(ctx context.Context, chatID string) ([]ChatHistory, error) {
	rows, err := q.query(ctx, q.listChatTurnsStmt, listChatTurns, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ChatHistory{}
	for rows.Next() {
		var i ChatHistory
		if err := rows.Scan(
			&i.ID,
			&i.ChatID,
			&i.GroupID,
			&i.ChatTitle,
			&i.ChannelCode,
			&i.ModelName,
			&i.UserContent,
			&i.AssistantContent,
			&i.ImageList,
			&i.FileList,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
