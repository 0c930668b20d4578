package config

import "github.com/aws/aws-sdk-go-v2/service/s3"

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Client   *s3.Client
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// RendererConfig : внешний сервис генерации PDF (trigger + status)
type RendererConfig struct {
	APIURL     string `yaml:"api_url"`
	APIKey     string `yaml:"api_key"`
	TemplateID string `yaml:"template_id"`
}

// SMTPConfig : параметры отправки транзакционных писем
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	TLS      bool   `yaml:"tls"`
}

// PublicConfig : внешний origin, из которого собираются публичные ссылки
// вида {origin}/public-document/{token}
type PublicConfig struct {
	Origin string `yaml:"origin"`
}

type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type AdminConfig struct {
	AdminToken string `yaml:"admin_token"`
}

type TTL struct {
	S3AndRedis int `yaml:"s3_and_redis"` // секунды, общий TTL для кэша и presigned ссылок
	TokenDays  int `yaml:"token_days"`   // срок жизни публичного токена в днях
}
