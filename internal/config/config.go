package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	JWTSecret      string
	MongoURI       string
	DBName         string
	SkipAuth       bool
	Environment    string
	AppId          string
	CORSOrigins    string
	DraftTTLMin    int    // minutes a report draft lives without being touched
	ExportRowLimit int    // hard cap on rows fetched for file exports
	DefaultTenant  string
	ConnectorsFile string // optional JSON file declaring external SQL connections
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnv("DB_NAME", "crm-reports"),
		SkipAuth:       getEnv("SKIP_AUTH", "false") == "true",
		Environment:    getEnv("ENVIRONMENT", "development"),
		AppId:          getEnv("APP_ID", "crm-reports"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		DraftTTLMin:    getEnvInt("DRAFT_TTL_MINUTES", 120),
		ExportRowLimit: getEnvInt("EXPORT_ROW_LIMIT", 50000),
		DefaultTenant:  getEnv("DEFAULT_TENANT", ""),
		ConnectorsFile: getEnv("CONNECTORS_FILE", ""),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
