// 由 sqlc 自动生成的代码。请勿编辑。
// 版本：
//   sqlc v1.30.0
// 源文件：usage_history.sql

package db

import (
	"context"
)

const createUsageRecord = `-- 名称: CreateUsageRecord :one
-- 功能: 创建新的令牌用量记录
INSERT INTO usage_history (
    id,
    group_id,
    model_name,
    input_tokens,
    output_tokens,
    created_at
) VALUES (
    ?, ?, ?, ?, ?, strftime('%s', 'now')
)
RETURNING id, group_id, model_name, input_tokens, output_tokens, created_at
`

// CreateUsageRecordParams 创建用量记录的参数结构体
type CreateUsageRecordParams struct {
	ID           string `json:"id"`            // 记录唯一标识符
	GroupID      string `json:"group_id"`      // 对话组唯一标识符
	ModelName    string `json:"model_name"`    // 模型名称
	InputTokens  int64  `json:"input_tokens"`  // 输入令牌数
	OutputTokens int64  `json:"output_tokens"` // 输出令牌数
}

// CreateUsageRecord 创建新的令牌用量记录
// 参数: ctx - 上下文对象，arg - 创建记录所需的参数
// 返回: 创建成功的 UsageHistory 对象和可能的错误
func (q *Queries) CreateUsageRecord(ctx context.Context, arg CreateUsageRecordParams) (UsageHistory, error) {
	row := q.queryRow(ctx, q.createUsageRecordStmt, createUsageRecord,
		arg.ID,
		arg.GroupID,
		arg.ModelName,
		arg.InputTokens,
		arg.OutputTokens,
	)
	var i UsageHistory
	err := row.Scan(
		&i.ID,
		&i.GroupID,
		&i.ModelName,
		&i.InputTokens,
		&i.OutputTokens,
		&i.CreatedAt,
	)
	return i, err
}

const getUsageByModel = `-- 名称: GetUsageByModel :many
-- 功能: 按模型聚合令牌用量
SELECT
    model_name,
    COUNT(*) AS record_count,
    SUM(input_tokens) AS input_tokens,
    SUM(output_tokens) AS output_tokens
FROM usage_history
GROUP BY model_name
ORDER BY input_tokens + output_tokens DESC
`

// GetUsageByModelRow 按模型聚合的用量统计行
type GetUsageByModelRow struct {
	ModelName    string `json:"model_name"`    // 模型名称
	RecordCount  int64  `json:"record_count"`  // 记录条数
	InputTokens  int64  `json:"input_tokens"`  // 输入令牌总数
	OutputTokens int64  `json:"output_tokens"` // 输出令牌总数
}

// GetUsageByModel 按模型聚合令牌用量
// 参数: ctx - 上下文对象
// 返回: 聚合统计行列表和可能的错误
func (q *Queries) GetUsageByModel(ctx context.Context) ([]GetUsageByModelRow, error) {
	rows, err := q.query(ctx, q.getUsageByModelStmt, getUsageByModel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GetUsageByModelRow{}
	for rows.Next() {
		var i GetUsageByModelRow
		if err := rows.Scan(
			&i.ModelName,
			&i.RecordCount,
			&i.InputTokens,
			&i.OutputTokens,
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
