package config

import (
	"github.com/openwave/ows/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Pinning  PinningConfig  `mapstructure:"pinning"`
	Scm      ScmConfig      `mapstructure:"scm"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 单链配置
type ChainConfig struct {
	ChainType     string                    `mapstructure:"chain_type"`    // 链类型 (avalanche, ethereum, polygon, etc.)
	ChainId       int64                     `mapstructure:"chain_id"`      // 链ID
	RpcUrl        string                    `mapstructure:"rpc_url"`       // RPC节点URL
	PrivateKey    string                    `mapstructure:"private_key"`   // 私钥
	Confirmations int                       `mapstructure:"confirmations"` // 交易确认区块数
	Contracts     map[string]ContractConfig `mapstructure:"contracts"`     // 该链上的托管合约配置
}

// ContractConfig 单个托管合约配置
type ContractConfig struct {
	Address    string `mapstructure:"address"`    // 合约地址
	Maintainer string `mapstructure:"maintainer"` // 合约所属维护者
	Enabled    bool   `mapstructure:"enabled"`    // 是否启用此合约
	BlockNum   int64  `mapstructure:"block_num"`  // 合约部署区块号
}

// PinningConfig 固定服务配置（两种凭证模式二选一）
type PinningConfig struct {
	ApiUrl     string `mapstructure:"api_url"`     // 固定服务API地址
	ApiKey     string `mapstructure:"api_key"`     // API Key
	ApiSecret  string `mapstructure:"api_secret"`  // API Secret
	Jwt        string `mapstructure:"jwt"`         // Bearer Token
	GatewayUrl string `mapstructure:"gateway_url"` // 公开网关地址
}

// ScmConfig 源码托管平台配置
type ScmConfig struct {
	ApiUrl string `mapstructure:"api_url"` // API地址
	Token  string `mapstructure:"token"`   // 访问令牌
}

// WebhookConfig 通知回调配置
type WebhookConfig struct {
	Url      string `mapstructure:"url"`       // 回调地址
	PoolSize int    `mapstructure:"pool_size"` // 协程池大小
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ows")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "openwave")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_type", "avalanche")
	viper.SetDefault("chain.chain_id", 43114)
	viper.SetDefault("chain.confirmations", 3)
	viper.SetDefault("pinning.api_url", "https://api.pinata.cloud")
	viper.SetDefault("pinning.gateway_url", "https://gateway.pinata.cloud/ipfs")
	viper.SetDefault("scm.api_url", "https://api.github.com")
	viper.SetDefault("webhook.pool_size", 8)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}
