package config

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Database  DatabaseConfig
	Log       LogConfig
	Institute InstituteConfig
	Receipts  ReceiptsConfig
	Backup    BackupConfig
}

type DatabaseConfig struct {
	Path        string
	BusyTimeout int
}

type LogConfig struct {
	Level  string
	Format string
}

// InstituteConfig holds the identity block printed on fee receipts.
type InstituteConfig struct {
	Name    string
	Address string
}

// ReceiptsConfig controls where payment memos are written.
type ReceiptsConfig struct {
	Dir string
}

// BackupConfig wires the backup subsystem.
type BackupConfig struct {
	SettingsPath string
	Schedule     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Database = DatabaseConfig{
		Path:        v.GetString("DB_PATH"),
		BusyTimeout: v.GetInt("DB_BUSY_TIMEOUT_MS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Institute = InstituteConfig{
		Name:    v.GetString("INSTITUTE_NAME"),
		Address: v.GetString("INSTITUTE_ADDRESS"),
	}

	cfg.Receipts = ReceiptsConfig{
		Dir: v.GetString("RECEIPTS_DIR"),
	}

	cfg.Backup = BackupConfig{
		SettingsPath: v.GetString("BACKUP_SETTINGS_PATH"),
		Schedule:     v.GetString("BACKUP_SCHEDULE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_PATH", "institute.db")
	v.SetDefault("DB_BUSY_TIMEOUT_MS", 5000)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("INSTITUTE_NAME", "PriorCoder Tech Studio")
	v.SetDefault("INSTITUTE_ADDRESS", "Gobind Nagar, St. No. 3, Chd Road, Ludhiana, Punjab - 141015")

	v.SetDefault("RECEIPTS_DIR", "./receipts")

	v.SetDefault("BACKUP_SETTINGS_PATH", "settings.json")
	v.SetDefault("BACKUP_SCHEDULE", "")
}
