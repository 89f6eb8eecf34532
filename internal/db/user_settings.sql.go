// 由 sqlc 自动生成的代码。请勿编辑。
// 版本：
//   sqlc v1.30.0
// 源文件：user_settings.sql

package db

import (
	"context"
)

const getUserSettings = `-- 名称: GetUserSettings :one
-- 功能: 获取用户通用设置
-- 说明: user_settings 为单行表，id 固定为 1
SELECT id, is_stream, history_length
FROM user_settings
WHERE id = 1
LIMIT 1
`

// GetUserSettings 获取用户通用设置
// 参数: ctx - 上下文对象
// 返回: 查询到的 UserSetting 对象和可能的错误
func (q *Queries) GetUserSettings(ctx context.Context) (UserSetting, error) {
	row := q.queryRow(ctx, q.getUserSettingsStmt, getUserSettings)
	var i UserSetting
	err := row.Scan(
		&i.ID,
		&i.IsStream,
		&i.HistoryLength,
	)
	return i, err
}

const updateUserSettings = `-- 名称: UpdateUserSettings :exec
-- 功能: 更新用户通用设置
UPDATE user_settings
SET is_stream = ?,
    history_length = ?
WHERE id = 1
`

// UpdateUserSettingsParams 更新用户设置的参数结构体
type UpdateUserSettingsParams struct {
	IsStream      int64 `json:"is_stream"`      // 是否启用流式输出（0: 否, 1: 是）
	HistoryLength int64 `json:"history_length"` // 每次请求保留的最近对话组数量
}

// UpdateUserSettings 更新用户通用设置
// 参数: ctx - 上下文对象，arg - 更新所需的参数
// 返回: 可能的错误
func (q *Queries) UpdateUserSettings(ctx context.Context, arg UpdateUserSettingsParams) error {
	_, err := q.exec(ctx, q.updateUserSettingsStmt, updateUserSettings, arg.IsStream, arg.HistoryLength)
	return err
}
