package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize"` // 单位：字节
	AllowedMethods []string `json:"allowedMethods"`
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout"` // 单位：秒
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
	Secret         string        `json:"secret"`
	ExpireDuration time.Duration `json:"expireDuration"`
	MaxRefresh     time.Duration `json:"maxRefresh"`
	Issuer         string        `json:"issuer"`
	SigningMethod  string        `json:"signingMethod"`
	CookieName     string        `json:"cookieName"`
}

type RateLimitConfig struct {
	Rate     int           `json:"rate"` // <=0 关闭限流
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
	Driver      string `json:"driver"`      // mysql | postgres
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称
	SSLMode     string `json:"sslmode"`     // 仅 postgres
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
}

// BlobConfig 对象存储配置，Driver 为 minio 或 s3
type BlobConfig struct {
	Driver          string `json:"driver"`
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"accessKeyID"`
	SecretAccessKey string `json:"secretAccessKey"`
	UseSSL          bool   `json:"useSSL"`
	Bucket          string `json:"bucket"`
	PublicBaseURL   string `json:"publicBaseURL"` // 公开访问前缀，为空时由 endpoint/bucket 推导
}

// StoreConfig 外部存储调用的超时
type StoreConfig struct {
	CallTimeout time.Duration `json:"callTimeout"`
}

type EventsConfig struct {
	Enabled bool     `json:"enabled"`
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // text | json
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Middleware MiddlewareConfig `json:"middleware"`
	Blob       BlobConfig       `json:"blob"`
	Store      StoreConfig      `json:"store"`
	Events     EventsConfig     `json:"events"`
	Log        LogConfig        `json:"log"`
	Env        string           `json:"env"` // 环境标识
}

var defaultConfig = Config{
	Server: ServerConfig{
		Address: ":8080",
	},
	Database: DatabaseConfig{
		Driver:      "mysql",
		Host:        "localhost",
		Port:        3306,
		Username:    "root",
		Password:    "root",
		DBName:      "car_catalog",
		SSLMode:     "disable",
		MinPoolSize: 5,
		MaxPoolSize: 50,
		LogLevel:    "warn",
	},
	Middleware: MiddlewareConfig{
		Security: SecurityConfig{
			MaxBodySize:    10 << 20, // 10MB
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		},
		JWT: JWTAuthConfig{
			Secret:         "dev-secret-change-me-in-production",
			ExpireDuration: 24 * time.Hour,
			MaxRefresh:     7 * 24 * time.Hour,
			Issuer:         "car-catalog",
			SigningMethod:  "HS256",
			CookieName:     "jwt",
		},
		Timeout: TimeoutConfig{
			RequestTimeout: 15,
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
			TrustedDomains:   []string{"localhost"},
		},
		// 一次完整的发布流程(登录 + 10 张图片 + 提交)不应触发限流
		RateLimit: RateLimitConfig{
			Rate:     30,
			Interval: 200 * time.Millisecond,
		},
	},
	Blob: BlobConfig{
		Driver:   "minio",
		Endpoint: "localhost:9000",
		Region:   "us-east-1",
		Bucket:   "car-images",
	},
	Store: StoreConfig{
		CallTimeout: 5 * time.Second,
	},
	Events: EventsConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "car-events",
	},
	Log: LogConfig{
		Level:  "info",
		Format: "text",
	},
	Env: "development",
}

// Default 返回默认配置的副本
func Default() *Config {
	c := defaultConfig
	return &c
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// envBindings 环境变量到配置键的映射
var envBindings = map[string]string{
	"server.address":                    "SERVER_ADDR",
	"env":                               "APP_ENV",
	"middleware.security.maxbodysize":   "MAX_BODY_SIZE",
	"middleware.timeout.requesttimeout": "REQUEST_TIMEOUT",
	"middleware.ratelimit.rate":         "RATE_LIMIT",
	"middleware.jwt.secret":             "JWT_SECRET",
	"middleware.jwt.expireduration":     "JWT_EXPIRATION",
	"middleware.jwt.issuer":             "JWT_ISSUER",
	"middleware.jwt.signingmethod":      "JWT_ALGORITHM",
	"database.driver":                   "DB_DRIVER",
	"database.host":                     "DB_HOST",
	"database.port":                     "DB_PORT",
	"database.username":                 "DB_USER",
	"database.password":                 "DB_PASSWORD",
	"database.dbname":                   "DB_NAME",
	"database.sslmode":                  "DB_SSLMODE",
	"database.useunixsock":              "DB_SOCKET",
	"database.minpoolsize":              "DB_MIN_POOL",
	"database.maxpoolsize":              "DB_MAX_POOL",
	"database.loglevel":                 "DB_LOG_LEVEL",
	"blob.driver":                       "BLOB_DRIVER",
	"blob.endpoint":                     "BLOB_ENDPOINT",
	"blob.region":                       "BLOB_REGION",
	"blob.accesskeyid":                  "BLOB_ACCESS_KEY",
	"blob.secretaccesskey":              "BLOB_SECRET_KEY",
	"blob.usessl":                       "BLOB_USE_SSL",
	"blob.bucket":                       "BLOB_BUCKET",
	"blob.publicbaseurl":                "BLOB_PUBLIC_BASE_URL",
	"store.calltimeout":                 "STORE_CALL_TIMEOUT",
	"events.enabled":                    "EVENTS_ENABLED",
	"events.brokers":                    "KAFKA_BROKERS",
	"events.topic":                      "KAFKA_TOPIC",
	"log.level":                         "LOG_LEVEL",
	"log.format":                        "LOG_FORMAT",
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	// .env 只补充未设置的环境变量
	_ = godotenv.Load()

	config, err := load(getConfigPath())
	if err != nil {
		hlog.Warnf("Failed to load config file: %v", err)
	}
	return config
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	var fileErr error
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		fileErr = v.ReadInConfig()
	}

	config := Default()
	if err := v.Unmarshal(config); err != nil {
		return Default(), fmt.Errorf("decode config: %w", err)
	}
	config.Middleware.JWT.SigningMethod = normalizeAlgorithm(config.Middleware.JWT.SigningMethod)
	config.Database.LogLevel = strings.ToLower(config.Database.LogLevel)

	return config, fileErr
}

func setDefaults(v *viper.Viper) {
	d := defaultConfig
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("env", d.Env)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.username", d.Database.Username)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.useunixsock", d.Database.UseUnixSock)
	v.SetDefault("database.minpoolsize", d.Database.MinPoolSize)
	v.SetDefault("database.maxpoolsize", d.Database.MaxPoolSize)
	v.SetDefault("database.loglevel", d.Database.LogLevel)

	v.SetDefault("middleware.security.maxbodysize", d.Middleware.Security.MaxBodySize)
	v.SetDefault("middleware.security.allowedmethods", d.Middleware.Security.AllowedMethods)
	v.SetDefault("middleware.jwt.secret", d.Middleware.JWT.Secret)
	v.SetDefault("middleware.jwt.expireduration", d.Middleware.JWT.ExpireDuration)
	v.SetDefault("middleware.jwt.maxrefresh", d.Middleware.JWT.MaxRefresh)
	v.SetDefault("middleware.jwt.issuer", d.Middleware.JWT.Issuer)
	v.SetDefault("middleware.jwt.signingmethod", d.Middleware.JWT.SigningMethod)
	v.SetDefault("middleware.jwt.cookiename", d.Middleware.JWT.CookieName)
	v.SetDefault("middleware.timeout.requesttimeout", d.Middleware.Timeout.RequestTimeout)
	v.SetDefault("middleware.cors.alloworigins", d.Middleware.CORS.AllowOrigins)
	v.SetDefault("middleware.cors.allowmethods", d.Middleware.CORS.AllowMethods)
	v.SetDefault("middleware.cors.allowheaders", d.Middleware.CORS.AllowHeaders)
	v.SetDefault("middleware.cors.exposeheaders", d.Middleware.CORS.ExposeHeaders)
	v.SetDefault("middleware.cors.allowcredentials", d.Middleware.CORS.AllowCredentials)
	v.SetDefault("middleware.cors.maxage", d.Middleware.CORS.MaxAge)
	v.SetDefault("middleware.cors.trusteddomains", d.Middleware.CORS.TrustedDomains)
	v.SetDefault("middleware.ratelimit.rate", d.Middleware.RateLimit.Rate)
	v.SetDefault("middleware.ratelimit.interval", d.Middleware.RateLimit.Interval)

	v.SetDefault("blob.driver", d.Blob.Driver)
	v.SetDefault("blob.endpoint", d.Blob.Endpoint)
	v.SetDefault("blob.region", d.Blob.Region)
	v.SetDefault("blob.bucket", d.Blob.Bucket)
	v.SetDefault("blob.usessl", d.Blob.UseSSL)

	v.SetDefault("store.calltimeout", d.Store.CallTimeout)

	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.json",                // 当前目录
		"../config.json",               // 上级目录
		"/etc/car-catalog/config.json", // 系统配置目录
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// normalizeAlgorithm 只接受 HMAC 系列算法，其余回退到 HS256
func normalizeAlgorithm(v string) string {
	algorithm := strings.ToLower(strings.ReplaceAll(v, " ", ""))

	validAlgorithms := map[string]bool{
		"hs256": true,
		"hs384": true,
		"hs512": true,
	}
	if validAlgorithms[algorithm] {
		return strings.ToUpper(algorithm)
	}
	hlog.Warnf("Unsupported JWT algorithm: %s", v)
	return "HS256"
}

// DSN 按驱动拼接连接串
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.Username, c.Password, c.DBName, c.SSLMode)
	}

	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"
	if c.UseUnixSock {
		// host 存储的是 socket 路径
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Username, c.Password, c.Host, c.DBName, charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Username, c.Password, c.Host, c.Port, c.DBName, charsetParam)
}

// GormConfig 返回带日志级别的 GORM 配置
func (c *DatabaseConfig) GormConfig() *gorm.Config {
	gormConfig := &gorm.Config{TranslateError: true}
	switch c.LogLevel {
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	case "warn":
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	return gormConfig
}

func (c *Config) InitDB() (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Database.Driver {
	case "mysql", "":
		dialector = mysql.Open(c.Database.DSN())
	case "postgres":
		dialector = postgres.Open(c.Database.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	db, err := gorm.Open(dialector, c.Database.GormConfig())
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

	return db, nil
}
