package data

import (
	"context"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jmoiron/sqlx"

	"github.com/iWorld-y/log_analysis/internal/domain"
	"github.com/iWorld-y/log_analysis/internal/repo"
)

// dayLabelLayout 错误日报表中的日期格式，如 July 29, 2016
const dayLabelLayout = "January 2, 2006"

var _ repo.Session = (*session)(nil)

type session struct {
	db      *sqlx.DB
	dialect dialect
	log     *log.Helper
	used    bool
}

type rankRow struct {
	Label string `db:"label"`
	Views int64  `db:"views"`
}

type errorDayRow struct {
	Day     string  `db:"log_day"`
	Percent float64 `db:"err_pcnt"`
}

// Fetch 执行报表语句。所有聚合、排序和百分比计算都在数据库中完成。
func (s *session) Fetch(ctx context.Context, req domain.Request) ([]domain.Row, error) {
	if s.used {
		return nil, domain.NewQueryError(nil, "%s report: session already served a query", req.Kind)
	}
	s.used = true

	query, args := buildStatement(s.dialect, req)
	query = s.db.Rebind(query)
	s.log.Debugf("running %s report: %s args=%v", req.Kind, query, args)

	if req.Kind == domain.ErrorDays {
		var rows []errorDayRow
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, domain.NewQueryError(err, "%s report query failed", req.Kind)
		}
		result := make([]domain.Row, 0, len(rows))
		for _, r := range rows {
			day, err := time.Parse(time.DateOnly, r.Day)
			if err != nil {
				return nil, domain.NewQueryError(err, "%s report: unexpected day value %q", req.Kind, r.Day)
			}
			result = append(result, domain.Row{Label: day.Format(dayLabelLayout), Percent: r.Percent})
		}
		return result, nil
	}

	var rows []rankRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, domain.NewQueryError(err, "%s report query failed", req.Kind)
	}
	result := make([]domain.Row, 0, len(rows))
	for _, r := range rows {
		result = append(result, domain.Row{Label: r.Label, Views: r.Views})
	}
	return result, nil
}

// Close 释放连接
func (s *session) Close() error {
	return s.db.Close()
}

// buildStatement 返回请求对应的语句（? 占位符）和绑定参数。
// limit 为 0 时不追加 LIMIT 子句。
func buildStatement(d dialect, req domain.Request) (string, []interface{}) {
	switch req.Kind {
	case domain.TopArticles:
		return withLimit(articlesStatement(d), req.Limit)
	case domain.TopAuthors:
		return withLimit(authorsStatement(d), req.Limit)
	default:
		return errorDaysStatement(d), []interface{}{req.Threshold}
	}
}

func withLimit(query string, limit int) (string, []interface{}) {
	if limit <= 0 {
		return query, nil
	}
	return query + "\nLIMIT ?", []interface{}{limit}
}

func articlesStatement(d dialect) string {
	return fmt.Sprintf(`SELECT a.title AS label, count(l.path) AS views
FROM articles a
LEFT JOIN log l ON l.path = %s
GROUP BY a.id, a.title
ORDER BY views DESC`, d.articlePath("a.slug"))
}

func authorsStatement(d dialect) string {
	return fmt.Sprintf(`SELECT au.name AS label, count(l.path) AS views
FROM authors au
LEFT JOIN articles a ON a.author = au.id
LEFT JOIN log l ON l.path = %s
GROUP BY au.id, au.name
ORDER BY views DESC`, d.articlePath("a.slug"))
}

// errorDaysStatement 分母为 0 时按 1 计算
func errorDaysStatement(d dialect) string {
	day := d.day("l.time")
	errPcnt := `100.0 * SUM(CASE WHEN l.status <> '200 OK' THEN 1 ELSE 0 END)
       / (CASE count(*) WHEN 0 THEN 1 ELSE count(*) END)`
	return fmt.Sprintf(`SELECT %s AS log_day,
       %s AS err_pcnt
FROM log l
GROUP BY %s
HAVING %s > ?
ORDER BY err_pcnt DESC`, day, errPcnt, day, errPcnt)
}
