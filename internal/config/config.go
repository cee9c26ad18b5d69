package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 默认值，与原始报表脚本保持一致
const (
	DefaultDriver         = "postgres"
	DefaultDBName         = "news"
	DefaultLogLevel       = "info"
	DefaultArticlesLimit  = 3
	DefaultAuthorsLimit   = 3
	DefaultErrorThreshold = 1.0
)

// 环境变量覆盖项
const (
	EnvDriver   = "NEWS_REPORT_DB_DRIVER"
	EnvDSN      = "NEWS_REPORT_DB_DSN"
	EnvDBName   = "NEWS_REPORT_DB_NAME"
	EnvLogLevel = "NEWS_REPORT_LOG_LEVEL"
)

// Config 项目配置结构体
type Config struct {
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Reports ReportsConfig `yaml:"reports"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Driver         string        `yaml:"driver"`
	DSN            string        `yaml:"dsn"`
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Name           string        `yaml:"name"`
	SSLMode        string        `yaml:"sslmode"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ReportsConfig 报表参数
type ReportsConfig struct {
	ArticlesLimit  int     `yaml:"articles_limit"`
	AuthorsLimit   int     `yaml:"authors_limit"`
	ErrorThreshold float64 `yaml:"error_threshold"`
}

// Default 返回不依赖任何配置文件的默认配置
func Default() *Config {
	return &Config{
		DB: DBConfig{
			Driver: DefaultDriver,
			Name:   DefaultDBName,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Reports: ReportsConfig{
			ArticlesLimit:  DefaultArticlesLimit,
			AuthorsLimit:   DefaultAuthorsLimit,
			ErrorThreshold: DefaultErrorThreshold,
		},
	}
}

// LoadConfig 从指定路径加载配置，未出现的字段保留默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	return cfg, nil
}

// Load 加载配置文件（可选）与 .env，并应用环境变量覆盖。
// path 为空时只使用默认值。
func Load(path string) (*Config, error) {
	// .env 不存在不是错误
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		c, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	cfg.ApplyEnv(os.Getenv)

	return cfg, nil
}

// ApplyEnv 使用环境变量覆盖配置
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDriver); v != "" {
		c.DB.Driver = v
	}
	if v := getenv(EnvDSN); v != "" {
		c.DB.DSN = v
	}
	if v := getenv(EnvDBName); v != "" {
		c.DB.Name = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) fillDefaults() {
	if c.DB.Driver == "" {
		c.DB.Driver = DefaultDriver
	}
	if c.DB.Name == "" && c.DB.DSN == "" {
		c.DB.Name = DefaultDBName
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
