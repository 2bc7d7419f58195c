package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// MinSecretLength HS256 密钥至少 256 bit
const MinSecretLength = 32

type ServerConfig struct {
	Address string `json:"address"`
}

type SecurityConfig struct {
	MaxBodySize      int64    `json:"maxBodySize"` // 单位：字节
	AllowedMethods   []string `json:"allowedMethods"`
	RequireUserAgent bool     `json:"requireUserAgent"`
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout"` // 单位：秒，<=0 表示不限制
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

type JWTAuthConfig struct {
	Secret         string        `json:"secret"` // 不提供默认值，也不允许输出到日志
	ExpireDuration time.Duration `json:"expireDuration"`
	Issuer         string        `json:"issuer"`
	SigningMethod  string        `json:"signingMethod"`
}

type RateLimitConfig struct {
	Rate     int           `json:"rate"` // 每个 Interval 允许的请求数，<=0 关闭限流
	Interval time.Duration `json:"interval"`
}

type MiddlewareConfig struct {
	Security  SecurityConfig  `json:"security"`
	JWT       JWTAuthConfig   `json:"jwt"`
	Timeout   TimeoutConfig   `json:"timeout"`
	CORS      CORSConfig      `json:"cors"`
	RateLimit RateLimitConfig `json:"rateLimit"`
}

type DatabaseConfig struct {
	Driver      string `json:"driver"`      // mysql | memory
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
}

// RedisConfig Addr 为空时使用进程内实现（吊销列表、限流）
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type PagingConfig struct {
	DefaultSize int `json:"defaultSize"`
	MaxSize     int `json:"maxSize"`
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Redis      RedisConfig      `json:"redis"`
	Paging     PagingConfig     `json:"paging"`
	Middleware MiddlewareConfig `json:"middleware"`
	LogLevel   string           `json:"logLevel"`
	Env        string           `json:"env"` // 环境标识
}

// Default 返回一份默认配置的拷贝
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Database: DatabaseConfig{
			Driver:      DriverMySQL,
			Host:        "localhost",
			Port:        3306,
			Username:    "root",
			DBName:      "twitter",
			UseUnixSock: false,
			MinPoolSize: 5,
			MaxPoolSize: 50,
			LogLevel:    "warn",
		},
		Paging: PagingConfig{
			DefaultSize: 10,
			MaxSize:     100,
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize:      1 << 20, // 1MB
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				RequireUserAgent: true,
			},
			JWT: JWTAuthConfig{
				ExpireDuration: time.Hour,
				Issuer:         "mini-twitter",
				SigningMethod:  "HS256",
			},
			Timeout: TimeoutConfig{
				RequestTimeout: 15,
			},
			CORS: CORSConfig{
				AllowOrigins:     []string{"http://localhost:3000"},
				AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"},
				ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
			RateLimit: RateLimitConfig{
				Rate:     20,
				Interval: time.Second,
			},
		},
		LogLevel: "info",
		Env:      "development",
	}
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	config := Default()

	// 1. 尝试从配置文件加载
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. 从环境变量覆盖
	loadFromEnv(&config)

	return &config
}

// Validate 启动前校验，密钥缺失直接拒绝启动
func (c *Config) Validate() error {
	if len(c.Middleware.JWT.Secret) < MinSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes, set JWT_SECRET", MinSecretLength)
	}
	if c.Middleware.JWT.ExpireDuration <= 0 {
		return errors.New("jwt expire duration must be positive")
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Paging.DefaultSize <= 0 || c.Paging.MaxSize < c.Paging.DefaultSize {
		return fmt.Errorf("invalid paging config: default=%d max=%d", c.Paging.DefaultSize, c.Paging.MaxSize)
	}
	return nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.json",                 // 当前目录
		"../config.json",                // 上级目录
		"/etc/mini-twitter/config.json", // 系统配置目录
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile 从文件加载配置
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	// 服务器配置
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	// 环境配置
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = strings.ToLower(v)
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = timeout
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	/****** JWT 配置 ******/
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Middleware.JWT.Secret = v
	}

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			config.Middleware.JWT.ExpireDuration = duration
		} else {
			hlog.Warnf("Invalid JWT_EXPIRATION format: %v", err)
		}
	}

	if v := os.Getenv("JWT_ISSUER"); v != "" {
		config.Middleware.JWT.Issuer = v
	}

	if v := os.Getenv("JWT_ALGORITHM"); v != "" {
		// 清理输入算法字符串中的空格
		algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

		// 允许的算法列表
		validAlgorithms := map[string]bool{
			"hs256": true,
			"hs384": true,
			"hs512": true,
		}

		if validAlgorithms[algorithm] {
			config.Middleware.JWT.SigningMethod = strings.ToUpper(algorithm)
		} else {
			hlog.Warnf("Unsupported JWT algorithm: %s", v)
		}
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}

	// Redis 配置
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}

	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			config.Redis.DB = db
		}
	}

	// 分页配置
	if v := os.Getenv("MAX_PAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Paging.MaxSize = size
		}
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// DSN 组装 MySQL 连接串
// clientFoundRows 让 UPDATE 的 RowsAffected 返回匹配行数，而不是实际变更行数
func (c *Config) DSN() string {
	params := "charset=utf8mb4&parseTime=True&loc=Local&clientFoundRows=true"

	// 自动切换连接方式
	if c.Database.UseUnixSock {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host, // 这里host存储的是socket路径
			c.Database.DBName,
			params)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		params)
}

// GormLogLevel 配置GORM日志级别
func (c *Config) GormLogLevel() logger.LogLevel {
	switch c.Database.LogLevel {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func (c *Config) InitDB() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(c.GormLogLevel()),
	}

	// 初始化数据库连接
	db, err := gorm.Open(mysql.Open(c.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
