// 由 sqlc 自动生成的代码。请勿编辑。
// 版本信息:
//   sqlc v1.30.0

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX 定义数据库事务接口，封装了数据库操作的核心方法
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New 创建并返回一个新的 Queries 实例
// 参数 db: 实现了 DBTX 接口的数据库连接对象
// 返回值: 初始化后的 Queries 指针
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Prepare 预编译所有 SQL 查询语句并返回 Queries 实例
// 该方法会预先准备所有数据库查询语句，以提高后续查询的性能
// 参数 ctx: 上下文对象，用于控制请求的生命周期
// 参数 db: 实现了 DBTX 接口的数据库连接对象
// 返回值: 初始化后的 Queries 指针和可能的错误
func Prepare(ctx context.Context, db DBTX) (*Queries, error) {
	q := Queries{db: db}
	var err error
	if q.createChatTurnStmt, err = db.PrepareContext(ctx, createChatTurn); err != nil {
		return nil, fmt.Errorf("准备查询 CreateChatTurn 时出错: %w", err)
	}
	if q.createUsageRecordStmt, err = db.PrepareContext(ctx, createUsageRecord); err != nil {
		return nil, fmt.Errorf("准备查询 CreateUsageRecord 时出错: %w", err)
	}
	if q.deleteChatStmt, err = db.PrepareContext(ctx, deleteChat); err != nil {
		return nil, fmt.Errorf("准备查询 DeleteChat 时出错: %w", err)
	}
	if q.deleteChatGroupStmt, err = db.PrepareContext(ctx, deleteChatGroup); err != nil {
		return nil, fmt.Errorf("准备查询 DeleteChatGroup 时出错: %w", err)
	}
	if q.getPreferredSearchEngineStmt, err = db.PrepareContext(ctx, getPreferredSearchEngine); err != nil {
		return nil, fmt.Errorf("准备查询 GetPreferredSearchEngine 时出错: %w", err)
	}
	if q.getUsageByModelStmt, err = db.PrepareContext(ctx, getUsageByModel); err != nil {
		return nil, fmt.Errorf("准备查询 GetUsageByModel 时出错: %w", err)
	}
	if q.getUserSettingsStmt, err = db.PrepareContext(ctx, getUserSettings); err != nil {
		return nil, fmt.Errorf("准备查询 GetUserSettings 时出错: %w", err)
	}
	if q.listChatTurnsStmt, err = db.PrepareContext(ctx, listChatTurns); err != nil {
		return nil, fmt.Errorf("准备查询 ListChatTurns 时出错: %w", err)
	}
	if q.listSearchEnginesStmt, err = db.PrepareContext(ctx, listSearchEngines); err != nil {
		return nil, fmt.Errorf("准备查询 ListSearchEngines 时出错: %w", err)
	}
	if q.updateSearchEngineConfigStmt, err = db.PrepareContext(ctx, updateSearchEngineConfig); err != nil {
		return nil, fmt.Errorf("准备查询 UpdateSearchEngineConfig 时出错: %w", err)
	}
	if q.updateUserSettingsStmt, err = db.PrepareContext(ctx, updateUserSettings); err != nil {
		return nil, fmt.Errorf("准备查询 UpdateUserSettings 时出错: %w", err)
	}
	return &q, nil
}

// Close 关闭所有预编译的 SQL 语句，释放相关资源
// 返回值: 关闭过程中遇到的第一个错误（如果有）
func (q *Queries) Close() error {
	var err error
	if q.createChatTurnStmt != nil {
		if cerr := q.createChatTurnStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 createChatTurnStmt 时出错: %w", cerr)
		}
	}
	if q.createUsageRecordStmt != nil {
		if cerr := q.createUsageRecordStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 createUsageRecordStmt 时出错: %w", cerr)
		}
	}
	if q.deleteChatStmt != nil {
		if cerr := q.deleteChatStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 deleteChatStmt 时出错: %w", cerr)
		}
	}
	if q.deleteChatGroupStmt != nil {
		if cerr := q.deleteChatGroupStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 deleteChatGroupStmt 时出错: %w", cerr)
		}
	}
	if q.getPreferredSearchEngineStmt != nil {
		if cerr := q.getPreferredSearchEngineStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 getPreferredSearchEngineStmt 时出错: %w", cerr)
		}
	}
	if q.getUsageByModelStmt != nil {
		if cerr := q.getUsageByModelStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 getUsageByModelStmt 时出错: %w", cerr)
		}
	}
	if q.getUserSettingsStmt != nil {
		if cerr := q.getUserSettingsStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 getUserSettingsStmt 时出错: %w", cerr)
		}
	}
	if q.listChatTurnsStmt != nil {
		if cerr := q.listChatTurnsStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 listChatTurnsStmt 时出错: %w", cerr)
		}
	}
	if q.listSearchEnginesStmt != nil {
		if cerr := q.listSearchEnginesStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 listSearchEnginesStmt 时出错: %w", cerr)
		}
	}
	if q.updateSearchEngineConfigStmt != nil {
		if cerr := q.updateSearchEngineConfigStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 updateSearchEngineConfigStmt 时出错: %w", cerr)
		}
	}
	if q.updateUserSettingsStmt != nil {
		if cerr := q.updateUserSettingsStmt.Close(); cerr != nil {
			err = fmt.Errorf("关闭 updateUserSettingsStmt 时出错: %w", cerr)
		}
	}
	return err
}

// exec 执行 SQL 查询语句，根据是否在事务中使用预编译语句或直接执行
func (q *Queries) exec(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (sql.Result, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).ExecContext(ctx, args...)
	case stmt != nil:
		return stmt.ExecContext(ctx, args...)
	default:
		return q.db.ExecContext(ctx, query, args...)
	}
}

// query 执行 SQL 查询并返回多行结果，根据是否在事务中使用预编译语句或直接执行
func (q *Queries) query(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) (*sql.Rows, error) {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).QueryContext(ctx, args...)
	case stmt != nil:
		return stmt.QueryContext(ctx, args...)
	default:
		return q.db.QueryContext(ctx, query, args...)
	}
}

// queryRow 执行 SQL 查询并返回单行结果，根据是否在事务中使用预编译语句或直接执行
func (q *Queries) queryRow(ctx context.Context, stmt *sql.Stmt, query string, args ...interface{}) *sql.Row {
	switch {
	case stmt != nil && q.tx != nil:
		return q.tx.StmtContext(ctx, stmt).QueryRowContext(ctx, args...)
	case stmt != nil:
		return stmt.QueryRowContext(ctx, args...)
	default:
		return q.db.QueryRowContext(ctx, query, args...)
	}
}

// Queries 结构体封装了所有数据库查询操作
// 包含数据库连接、事务对象以及所有预编译的 SQL 语句
type Queries struct {
	db                           DBTX      // 数据库连接对象，实现了 DBTX 接口
	tx                           *sql.Tx   // 数据库事务对象（可选）
	createChatTurnStmt           *sql.Stmt // 创建对话轮次的预编译语句
	createUsageRecordStmt        *sql.Stmt // 创建用量记录的预编译语句
	deleteChatStmt               *sql.Stmt // 删除会话记录的预编译语句
	deleteChatGroupStmt          *sql.Stmt // 删除对话组记录的预编译语句
	getPreferredSearchEngineStmt *sql.Stmt // 获取首选搜索引擎的预编译语句
	getUsageByModelStmt          *sql.Stmt // 按模型聚合用量的预编译语句
	getUserSettingsStmt          *sql.Stmt // 获取用户设置的预编译语句
	listChatTurnsStmt            *sql.Stmt // 列出对话轮次的预编译语句
	listSearchEnginesStmt        *sql.Stmt // 列出搜索引擎的预编译语句
	updateSearchEngineConfigStmt *sql.Stmt // 更新搜索引擎配置的预编译语句
	updateUserSettingsStmt       *sql.Stmt // 更新用户设置的预编译语句
}

// WithTx 创建并返回一个与指定事务关联的新的 Queries 实例
// 该方法允许在事务上下文中执行所有数据库操作
// 参数 tx: 数据库事务对象
// 返回值: 与事务关联的新的 Queries 实例
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db:                           tx,
		tx:                           tx,
		createChatTurnStmt:           q.createChatTurnStmt,
		createUsageRecordStmt:        q.createUsageRecordStmt,
		deleteChatStmt:               q.deleteChatStmt,
		deleteChatGroupStmt:          q.deleteChatGroupStmt,
		getPreferredSearchEngineStmt: q.getPreferredSearchEngineStmt,
		getUsageByModelStmt:          q.getUsageByModelStmt,
		getUserSettingsStmt:          q.getUserSettingsStmt,
		listChatTurnsStmt:            q.listChatTurnsStmt,
		listSearchEnginesStmt:        q.listSearchEnginesStmt,
		updateSearchEngineConfigStmt: q.updateSearchEngineConfigStmt,
		updateUserSettingsStmt:       q.updateUserSettingsStmt,
	}
}
