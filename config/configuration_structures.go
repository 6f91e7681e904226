package config

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

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// RateLimitConfig : политика ограничения попыток входа.
// Threshold — после скольких неудачных попыток блокируем,
// Window — фиксированное окно, в котором считаются попытки
type RateLimitConfig struct {
	Threshold int    `yaml:"threshold"`
	Window    string `yaml:"window"`
}

// ResetConfig : параметры токенов сброса пароля
type ResetConfig struct {
	TokenTTL    string `yaml:"token_ttl"`
	NotifierURL string `yaml:"notifier_url"`
}

// WebhookConfig : параметры проверки подписи входящих webhook платёжного провайдера
type WebhookConfig struct {
	Secret    string `yaml:"secret"`
	Tolerance string `yaml:"tolerance"`
}
