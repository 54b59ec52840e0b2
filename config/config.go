package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Storage  StorageConfig  `yaml:"storage"`
	Report   ReportConfig   `yaml:"report"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql
	DSN  string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

type StorageConfig struct {
	Dir           string        `yaml:"dir"`      // 对象存储根目录
	Bucket        string        `yaml:"bucket"`   // 桶名，进入 URL 路径
	BaseURL       string        `yaml:"base_url"` // 对外访问地址
	URLSecret     string        `yaml:"url_secret"`
	SignedExpiry  time.Duration `yaml:"signed_expiry"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
}

type ReportConfig struct {
	// 随应用分发的可填写 PDF 模板路径
	FillablePDF string `yaml:"fillable_pdf"`
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		cfg = loadConfig()
	})
	return cfg
}

func loadConfig() *Config {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Auth: AuthConfig{
			JWTSecret:     "offduty7-dev-secret",
			TokenDuration: 24 * time.Hour,
		},
		Storage: StorageConfig{
			Dir:           "./data/storage",
			Bucket:        "pdf-templates",
			BaseURL:       "http://localhost:8080",
			URLSecret:     "offduty7-url-secret",
			SignedExpiry:  3600 * time.Second,
			MaxUploadSize: 10 << 20, // PDF 上限 10MB
		},
		Report: ReportConfig{
			FillablePDF: "./assets/off-duty-vehicle-usage-report.pdf",
		},
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		yaml.Unmarshal(data, config)
	}

	// 环境变量优先级高于配置文件
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		config.Server.Mode = mode
	}
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		config.Storage.Dir = dir
	}
	if baseURL := os.Getenv("STORAGE_BASE_URL"); baseURL != "" {
		config.Storage.BaseURL = baseURL
	}
	if secret := os.Getenv("STORAGE_URL_SECRET"); secret != "" {
		config.Storage.URLSecret = secret
	}
	if expiry := os.Getenv("STORAGE_SIGNED_EXPIRY"); expiry != "" {
		if secs, err := strconv.Atoi(expiry); err == nil && secs > 0 {
			config.Storage.SignedExpiry = time.Duration(secs) * time.Second
		}
	}
	if pdfPath := os.Getenv("REPORT_FILLABLE_PDF"); pdfPath != "" {
		config.Report.FillablePDF = pdfPath
	}

	if config.Storage.Bucket == "" {
		config.Storage.Bucket = "pdf-templates"
	}
	if config.Storage.Dir == "" {
		config.Storage.Dir = filepath.Join("./data", "storage")
	}

	return config
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func UpdateConfig(newCfg *Config) {
	cfg = newCfg
}
