package repo

import (
	"context"

	"github.com/iWorld-y/log_analysis/internal/domain"
)

// ReportRepo 报表数据源，每份报表打开一个独立会话
type ReportRepo interface {
	// Open 建立数据库连接，失败时返回 ConnectionError
	Open(ctx context.Context) (Session, error)
}

// Session 单次报表使用的连接，只能执行一次查询，用完必须 Close
type Session interface {
	// Fetch 执行请求对应的聚合语句，失败时返回 QueryError
	Fetch(ctx context.Context, req domain.Request) ([]domain.Row, error)
	Close() error
}
