package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

// VATConfig holds the jurisdiction profile the service issues invoices
// under. DefaultRate and RequiredFields feed the vat package config;
// ReceiptPrefix seeds receipt numbering.
type VATConfig struct {
	Jurisdiction   string
	Enabled        bool
	DefaultRate    string
	Categories     []string
	RequiredFields []string
	ReceiptPrefix  string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	VAT         VATConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		VAT: VATConfig{
			Jurisdiction:   v.GetString("VAT_JURISDICTION"),
			Enabled:        v.GetBool("VAT_ENABLED"),
			DefaultRate:    v.GetString("VAT_DEFAULT_RATE"),
			Categories:     parseList(v.GetString("VAT_CATEGORIES")),
			RequiredFields: parseList(v.GetString("VAT_REQUIRED_FIELDS")),
			ReceiptPrefix:  v.GetString("RECEIPT_PREFIX"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.VAT.Jurisdiction == "" {
		cfg.VAT.Jurisdiction = "NONE"
	}
	if cfg.VAT.DefaultRate == "" {
		cfg.VAT.DefaultRate = "0"
	}
	if cfg.VAT.ReceiptPrefix == "" {
		cfg.VAT.ReceiptPrefix = "INV"
	}
	if len(cfg.VAT.RequiredFields) == 0 && cfg.VAT.Enabled {
		cfg.VAT.RequiredFields = []string{
			"supplierName",
			"supplierVATID",
			"issueDate",
			"lines",
			"total",
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if strings.ToUpper(cfg.VAT.ReceiptPrefix) != cfg.VAT.ReceiptPrefix {
		return fmt.Errorf("RECEIPT_PREFIX must be uppercase letters")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
