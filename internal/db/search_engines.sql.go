// 由 sqlc 自动生成的代码。请勿编辑。
// 版本：
//   sqlc v1.30.0
// 源文件：search_engines.sql

package db

import (
	"context"
)

const getPreferredSearchEngine = `-- 名称: GetPreferredSearchEngine :one
-- 功能: 获取首选搜索引擎
-- 说明: seq 最小的行为首选引擎
SELECT id, name, config, seq
FROM search_engines
ORDER BY seq
LIMIT 1
`

// GetPreferredSearchEngine 获取首选搜索引擎
// 参数: ctx - 上下文对象
// 返回: 查询到的 SearchEngine 对象和可能的错误
func (q *Queries) GetPreferredSearchEngine(ctx context.Context) (SearchEngine, error) {
	row := q.queryRow(ctx, q.getPreferredSearchEngineStmt, getPreferredSearchEngine)
	var i SearchEngine
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Config,
		&i.Seq,
	)
	return i, err
}

const listSearchEngines = `-- 名称: ListSearchEngines :many
-- 功能: 按排序序号列出所有搜索引擎
SELECT id, name, config, seq
FROM search_engines
ORDER BY seq
`

// ListSearchEngines 按排序序号列出所有搜索引擎
// 参数: ctx - 上下文对象
// 返回: 搜索引擎列表和可能的错误
func (q *Queries) ListSearchEngines(ctx context.Context) ([]SearchEngine, error) {
	rows, err := q.query(ctx, q.listSearchEnginesStmt, listSearchEngines)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SearchEngine{}
	for rows.Next() {
		var i SearchEngine
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Config,
			&i.Seq,
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

const updateSearchEngineConfig = `-- 名称: UpdateSearchEngineConfig :exec
-- 功能: 更新指定搜索引擎的配置
UPDATE search_engines
SET config = ?
WHERE id = ?
`

// UpdateSearchEngineConfigParams 更新搜索引擎配置的参数结构体
type UpdateSearchEngineConfigParams struct {
	Config string `json:"config"` // 引擎配置（JSON 格式）
	ID     int64  `json:"id"`     // 引擎主键
}

// UpdateSearchEngineConfig 更新指定搜索引擎的配置
// 参数: ctx - 上下文对象，arg - 更新所需的参数
// 返回: 可能的错误
func (q *Queries) UpdateSearchEngineConfig(ctx context.Context, arg UpdateSearchEngineConfigParams) error {
	_, err := q.exec(ctx, q.updateSearchEngineConfigStmt, updateSearchEngineConfig, arg.Config, arg.ID)
	return err
}
