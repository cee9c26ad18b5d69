package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/log_analysis/internal/domain"
	"github.com/iWorld-y/log_analysis/internal/render"
	"github.com/iWorld-y/log_analysis/internal/repo"
)

// ReportUseCase 报表业务逻辑: 校验 → 连接 → 查询 → 渲染 → 释放连接
type ReportUseCase struct {
	repo         repo.ReportRepo
	queryTimeout time.Duration
	log          *log.Helper
}

// NewReportUseCase 创建报表业务逻辑实例，queryTimeout 为 0 表示不限时
func NewReportUseCase(repo repo.ReportRepo, queryTimeout time.Duration, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, queryTimeout: queryTimeout, log: log.NewHelper(logger)}
}

// Generate 生成单份报表。参数不合法时不会建立连接。
func (uc *ReportUseCase) Generate(ctx context.Context, req domain.Request) (domain.Report, error) {
	if err := req.Validate(); err != nil {
		return domain.Report{}, err
	}

	session, err := uc.repo.Open(ctx)
	if err != nil {
		return domain.Report{}, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			uc.log.Warnf("closing %s report connection: %v", req.Kind, cerr)
		}
	}()

	if uc.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.queryTimeout)
		defer cancel()
	}

	rows, err := session.Fetch(ctx, req)
	if err != nil {
		return domain.Report{}, err
	}
	uc.log.Debugf("%s report returned %d rows", req.Kind, len(rows))

	return render.Render(req, rows)
}

// RunAll 按顺序生成并输出报表。
// ConnectionError 立即中止并返回；QueryError 和 ValidationError 只跳过当前报表。
func (uc *ReportUseCase) RunAll(ctx context.Context, reqs []domain.Request, w io.Writer) error {
	for _, req := range reqs {
		report, err := uc.Generate(ctx, req)
		switch {
		case err == nil:
			if _, err := io.WriteString(w, report.String()); err != nil {
				return fmt.Errorf("write %s report: %w", req.Kind, err)
			}
		case domain.IsConnectionError(err):
			return err
		case domain.IsValidationError(err), domain.IsQueryError(err):
			uc.log.Errorf("skipping %s report: %v", req.Kind, err)
		default:
			return fmt.Errorf("%s report: %w", req.Kind, err)
		}
	}
	return nil
}
