package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

type StorageConfig struct {
	// Driver is "local" or "s3".
	Driver            string
	ExportDir         string
	FilesPublicPrefix string
	ExternalURL       string
}

// ProtectionConfig controls the PDF protection pass.
type ProtectionConfig struct {
	Enabled       bool
	Printing      string // none, low or high
	AllowModify   bool
	AllowCopy     bool
	AllowAnnotate bool
	AllowFill     bool
	AllowContent  bool
	AllowAssembly bool
	OwnerPassword string
	TempDir       string
}

type ReportConfig struct {
	Organisation string
	Footer       string
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	Port       string
	Postgres   PostgresConfig
	Redis      RedisConfig
	S3         S3Config
	Storage    StorageConfig
	Protection ProtectionConfig
	Report     ReportConfig
	Log        LogConfig
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

// readEnvBool accepts the permissive spellings operators use for permission
// switches. Unset or empty means def, anything unrecognised means false.
func readEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on", "allow", "allowed":
		return true
	default:
		return false
	}
}

func Load() AppConfig {
	return AppConfig{
		Port: getenv("APP_PORT", "8010"),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", ""),
			DBName:   getenv("PG_DB", "dails"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "dails_"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "declarations"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
		},
		Storage: StorageConfig{
			Driver:            getenv("STORAGE_DRIVER", "local"),
			ExportDir:         getenv("EXPORT_DIR", "./exports"),
			FilesPublicPrefix: getenv("FILES_PUBLIC_PREFIX", "/files"),
			ExternalURL:       getenv("EXTERNAL_URL", ""),
		},
		Protection: ProtectionConfig{
			Enabled:       readEnvBool("PDF_PROTECTION_ENABLED", true),
			Printing:      getenv("PDF_PERMIT_PRINTING", "high"),
			AllowModify:   readEnvBool("PDF_ALLOW_MODIFY", false),
			AllowCopy:     readEnvBool("PDF_ALLOW_COPY", false),
			AllowAnnotate: readEnvBool("PDF_ALLOW_ANNOTATE", false),
			AllowFill:     readEnvBool("PDF_ALLOW_FILL_FORMS", false),
			AllowContent:  readEnvBool("PDF_ALLOW_CONTENT_ACCESS", false),
			AllowAssembly: readEnvBool("PDF_ALLOW_DOC_ASSEMBLY", false),
			OwnerPassword: getenv("PDF_OWNER_PASSWORD", os.Getenv("PDF_OWNER_SECRET")),
			TempDir:       getenv("PDF_TEMP_DIR", ""),
		},
		Report: ReportConfig{
			Organisation: getenv("REPORT_ORGANISATION", ""),
			Footer:       getenv("REPORT_FOOTER", ""),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "console"),
		},
	}
}
