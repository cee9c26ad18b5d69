package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/log_analysis/internal/config"
	"github.com/iWorld-y/log_analysis/internal/data"
	"github.com/iWorld-y/log_analysis/internal/domain"
	"github.com/iWorld-y/log_analysis/internal/logger"
	"github.com/iWorld-y/log_analysis/internal/usecase"
)

// go build -ldflags "-X main.Version=x.y.z"
var Version = "dev"

type options struct {
	configFile     string
	driver         string
	dsn            string
	dbName         string
	articlesLimit  string
	authorsLimit   string
	errorThreshold string
	reports        []string
	logLevel       string
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "news_report",
		Short:   "Plain text reports over the news site's articles, authors and access log",
		Long:    `Prints the most popular articles, the most popular authors and the days with a high share of failed requests.`,
		Version: Version,
		Args:    cobra.NoArgs,
		// 连接错误时由 main 打印并以非零状态退出
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd, opts, stdout)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "conf", "c", "", "config path, eg: --conf configs/config.yaml")
	f.StringVar(&opts.driver, "driver", "", "database driver: postgres, mysql or sqlite")
	f.StringVar(&opts.dsn, "dsn", "", "full data source name, overrides the db.* connection fields")
	f.StringVar(&opts.dbName, "db-name", "", "database name (default \"news\")")
	f.StringVar(&opts.articlesLimit, "articles-limit", "", "number of articles to list, 0 for all (default 3)")
	f.StringVar(&opts.authorsLimit, "authors-limit", "", "number of authors to list, 0 for all (default 3)")
	f.StringVar(&opts.errorThreshold, "error-threshold", "", "list days whose error percentage is above this value (default 1)")
	f.StringSliceVar(&opts.reports, "report", nil, "reports to print: articles, authors, errors (default all, in that order)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts *options, stdout io.Writer) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, opts, cfg)

	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	kl := logger.NewKratosLogger(logger.Log)

	conn, err := data.NewConnector(cfg.DB, kl)
	if err != nil {
		return err
	}
	uc := usecase.NewReportUseCase(conn, cfg.DB.QueryTimeout, kl)

	reqs, err := buildRequests(opts, cfg)
	if err != nil {
		return err
	}
	return uc.RunAll(ctx, reqs, stdout)
}

// applyFlags 命令行参数优先于配置文件和环境变量
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("driver") {
		cfg.DB.Driver = opts.driver
	}
	if f.Changed("dsn") {
		cfg.DB.DSN = opts.dsn
	}
	if f.Changed("db-name") {
		cfg.DB.Name = opts.dbName
	}
	if f.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
}

// buildRequests 组装要运行的报表。
// limit/threshold 的非法值只让对应报表以 ValidationError 跳过，未知报表名则直接报错。
func buildRequests(opts *options, cfg *config.Config) ([]domain.Request, error) {
	kinds := domain.Kinds
	if len(opts.reports) > 0 {
		kinds = make([]domain.Kind, 0, len(opts.reports))
		for _, name := range opts.reports {
			k, err := domain.ParseKind(name)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, k)
		}
	}

	reqs := make([]domain.Request, 0, len(kinds))
	for _, k := range kinds {
		var limitArg, thresholdArg string
		switch k {
		case domain.TopArticles:
			limitArg = orDefault(opts.articlesLimit, strconv.Itoa(cfg.Reports.ArticlesLimit))
		case domain.TopAuthors:
			limitArg = orDefault(opts.authorsLimit, strconv.Itoa(cfg.Reports.AuthorsLimit))
		case domain.ErrorDays:
			thresholdArg = orDefault(opts.errorThreshold, strconv.FormatFloat(cfg.Reports.ErrorThreshold, 'f', -1, 64))
		}

		req, err := domain.NewRequest(k, limitArg, thresholdArg)
		if err != nil {
			logger.Log.Errorf("skipping %s report: %v", k, err)
			continue
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
