package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port       int           `mapstructure:"port"`
	BodyLimit  int64         `mapstructure:"body_limit"` // 字节
	RateLimit  int           `mapstructure:"rate_limit"` // 每窗口请求数，0 表示关闭
	RateWindow time.Duration `mapstructure:"rate_window"`
	CORS       CORSConfig    `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 校验配置（令牌由外部认证服务签发）
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchedulingConfig 排课引擎配置
type SchedulingConfig struct {
	WorkingDays           []int         `mapstructure:"working_days"` // 0=周日 … 6=周六
	DefaultSessionMinutes int           `mapstructure:"default_session_minutes"`
	DefaultSuggestLimit   int           `mapstructure:"default_suggest_limit"`
	MaxSuggestLimit       int           `mapstructure:"max_suggest_limit"`
	SuggestHorizonDays    int           `mapstructure:"suggest_horizon_days"`
	PlanHorizonDays       int           `mapstructure:"plan_horizon_days"`
	LockBackend           string        `mapstructure:"lock_backend"` // memory | redis
	LockTTL               time.Duration `mapstructure:"lock_ttl"`     // 持有期间每 ttl/3 续期
	LockWait              time.Duration `mapstructure:"lock_wait"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("server.rate_window", "1m")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "bem_planning")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "") // 生产环境通过 PLANNER_AUTH_JWT_SECRET 注入
	v.SetDefault("auth.issuer", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scheduling.working_days", []int{1, 2, 3, 4, 5})
	v.SetDefault("scheduling.default_session_minutes", 120)
	v.SetDefault("scheduling.default_suggest_limit", 10)
	v.SetDefault("scheduling.max_suggest_limit", 50)
	v.SetDefault("scheduling.suggest_horizon_days", 28)
	v.SetDefault("scheduling.plan_horizon_days", 90)
	v.SetDefault("scheduling.lock_backend", "memory")
	v.SetDefault("scheduling.lock_ttl", "30s")
	v.SetDefault("scheduling.lock_wait", "10s")
}

// Default 返回仅含默认值的配置（测试与工具使用）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	return c.Scheduling.Validate()
}

// Validate 校验排课配置
func (s *SchedulingConfig) Validate() error {
	if len(s.WorkingDays) == 0 {
		return fmt.Errorf("配置校验失败: scheduling.working_days 不能为空")
	}
	for _, d := range s.WorkingDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("配置校验失败: scheduling.working_days 取值必须在 0-6 之间")
		}
	}
	if s.DefaultSessionMinutes <= 0 {
		return fmt.Errorf("配置校验失败: scheduling.default_session_minutes 必须大于 0")
	}
	if s.DefaultSuggestLimit <= 0 || s.MaxSuggestLimit < s.DefaultSuggestLimit {
		return fmt.Errorf("配置校验失败: scheduling.max_suggest_limit 不能小于 default_suggest_limit")
	}
	if s.SuggestHorizonDays <= 0 || s.PlanHorizonDays <= 0 {
		return fmt.Errorf("配置校验失败: scheduling 搜索天数必须大于 0")
	}
	if s.LockTTL < 3*time.Second {
		return fmt.Errorf("配置校验失败: scheduling.lock_ttl 不能小于 3s")
	}
	if s.LockWait < 0 {
		return fmt.Errorf("配置校验失败: scheduling.lock_wait 不能为负数")
	}
	switch s.LockBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("配置校验失败: scheduling.lock_backend 只能是 memory 或 redis")
	}
	return nil
}
