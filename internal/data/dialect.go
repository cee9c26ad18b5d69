package data

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iWorld-y/log_analysis/internal/config"
)

// dialect 屏蔽不同数据库在字符串拼接和按日分组上的差异
type dialect struct {
	// driverName 是 database/sql 注册的驱动名
	driverName string
	// articlePath 返回 '/article/' 与 slug 列拼接的表达式
	articlePath func(slugCol string) string
	// day 返回把时间列截断为 YYYY-MM-DD 文本的表达式
	day func(timeCol string) string
	// dsn 由分项配置构造连接串
	dsn func(cfg config.DBConfig) string
}

var dialects = map[string]dialect{
	"postgres": {
		driverName:  "postgres",
		articlePath: func(col string) string { return "'/article/' || " + col },
		day:         func(col string) string { return "to_char(" + col + ", 'YYYY-MM-DD')" },
		dsn:         postgresDSN,
	},
	"mysql": {
		driverName:  "mysql",
		articlePath: func(col string) string { return "CONCAT('/article/', " + col + ")" },
		day:         func(col string) string { return "DATE_FORMAT(" + col + ", '%Y-%m-%d')" },
		dsn:         mysqlDSN,
	},
	"sqlite": {
		// modernc.org/sqlite 注册的驱动名是 sqlite
		driverName:  "sqlite",
		articlePath: func(col string) string { return "'/article/' || " + col },
		day:         func(col string) string { return "strftime('%Y-%m-%d', " + col + ")" },
		dsn:         sqliteDSN,
	},
}

func lookupDialect(driver string) (dialect, error) {
	switch strings.ToLower(driver) {
	case "", "postgres", "postgresql", "pq":
		return dialects["postgres"], nil
	case "mysql":
		return dialects["mysql"], nil
	case "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	}
	return dialect{}, fmt.Errorf("unsupported DB driver %q: must be postgres, mysql or sqlite", driver)
}

// postgresDSN 未配置 host 时只给出 dbname，其余交给 libpq 的 PG* 环境变量
func postgresDSN(cfg config.DBConfig) string {
	parts := []string{"dbname=" + quoteConnValue(cfg.Name)}
	if cfg.Host != "" {
		parts = append(parts, "host="+quoteConnValue(cfg.Host))
	}
	if cfg.Port != 0 {
		parts = append(parts, fmt.Sprintf("port=%d", cfg.Port))
	}
	if cfg.User != "" {
		parts = append(parts, "user="+quoteConnValue(cfg.User))
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+quoteConnValue(cfg.Password))
	}
	if cfg.SSLMode != "" {
		parts = append(parts, "sslmode="+quoteConnValue(cfg.SSLMode))
	}
	if cfg.ConnectTimeout > 0 {
		secs := int(cfg.ConnectTimeout.Seconds())
		if secs < 1 {
			secs = 1
		}
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", secs))
	}
	return strings.Join(parts, " ")
}

// quoteConnValue 按 libpq key=value 规则为含空格或引号的值加引号
func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func mysqlDSN(cfg config.DBConfig) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Name
	if cfg.Host != "" {
		mc.Net = "tcp"
		port := cfg.Port
		if port == 0 {
			port = 3306
		}
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, port)
	}
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc.FormatDSN()
}

// sqliteDSN 以只读方式打开数据库文件
func sqliteDSN(cfg config.DBConfig) string {
	return "file:" + cfg.Name + "?" + url.Values{"mode": {"ro"}}.Encode()
}
