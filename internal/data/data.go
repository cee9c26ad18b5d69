package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/log_analysis/internal/config"
	"github.com/iWorld-y/log_analysis/internal/domain"
	"github.com/iWorld-y/log_analysis/internal/repo"
)

var _ repo.ReportRepo = (*Connector)(nil)

// Connector 按报表打开独立的数据库连接
type Connector struct {
	cfg     config.DBConfig
	dialect dialect
	dsn     string
	log     *log.Helper
}

// NewConnector 根据配置选择驱动并准备连接串，不会立即连接数据库
func NewConnector(cfg config.DBConfig, logger log.Logger) (*Connector, error) {
	d, err := lookupDialect(cfg.Driver)
	if err != nil {
		return nil, domain.NewConnectionError(err, "invalid database configuration")
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = d.dsn(cfg)
	}
	return &Connector{
		cfg:     cfg,
		dialect: d,
		dsn:     dsn,
		log:     log.NewHelper(logger),
	}, nil
}

// Open 建立连接并 Ping，失败时返回 ConnectionError
func (c *Connector) Open(ctx context.Context) (repo.Session, error) {
	c.log.Infof("Trying to connect to `%s` database...", c.databaseName())

	db, err := sqlx.ConnectContext(ctx, c.dialect.driverName, c.dsn)
	if err != nil {
		c.log.Errorf("Unable to connect! %v", err)
		return nil, domain.NewConnectionError(err, "unable to connect to %q", c.databaseName())
	}
	// 会话只执行一条语句
	db.SetMaxOpenConns(1)

	c.log.Info("Connected!")
	return &session{db: db, dialect: c.dialect, log: c.log}, nil
}

func (c *Connector) databaseName() string {
	if c.cfg.Name != "" {
		return c.cfg.Name
	}
	return c.dialect.driverName
}
