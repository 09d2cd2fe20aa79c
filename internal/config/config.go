package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Detector DetectorConfig `mapstructure:"detector"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Email    EmailConfig    `mapstructure:"email"`
	S3       S3Config       `mapstructure:"s3"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	Env         string   `mapstructure:"env"` // development | production
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// IsDevelopment reports whether internal error details may be exposed.
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
	CookieName string        `mapstructure:"cookie_name"`
}

// DetectorConfig describes how the pose-detection subprocess is invoked.
type DetectorConfig struct {
	Interpreter   string        `mapstructure:"interpreter"`
	Script        string        `mapstructure:"script"`
	WorkDir       string        `mapstructure:"work_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

// PaymentConfig carries the gateway secret and endpoints.
type PaymentConfig struct {
	Secret      string `mapstructure:"secret"`
	ProductCode string `mapstructure:"product_code"`
	GatewayURL  string `mapstructure:"gateway_url"`
	SuccessURL  string `mapstructure:"success_url"`
	FailureURL  string `mapstructure:"failure_url"`
}

// EmailConfig configures the transactional mail provider. An empty API
// key switches the mailer to dev mode (codes are logged, not sent).
type EmailConfig struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled reports whether snapshot archival is configured at all.
func (s S3Config) Enabled() bool {
	return s.BucketName != ""
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION, ...
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "yoga_ai")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("jwt.cookie_name", "yoga_token")
	viper.SetDefault("detector.interpreter", "python3")
	viper.SetDefault("detector.script", "./scripts/pose_detection.py")
	viper.SetDefault("detector.timeout", "30s")
	viper.SetDefault("detector.max_concurrent", 4)
	viper.SetDefault("payment.product_code", "EPAYTEST")
	viper.SetDefault("payment.gateway_url", "https://rc-epay.esewa.com.np/api/epay/main/v2/form")
	viper.SetDefault("s3.use_ssl", true)

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults may be the whole story.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
