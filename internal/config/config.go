package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// CLI is the command-line client configuration, read from psucalc.ini.
type CLI struct {
	Path string

	API      APIConfig
	Estimate EstimateConfig
	Log      LogConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type EstimateConfig struct {
	MarginPct int
}

type LogConfig struct {
	Level string
}

const fileName = "psucalc.ini"

// SearchPaths lists the locations tried in order: the working directory,
// then $HOME/.psucalc.
func SearchPaths() []string {
	paths := []string{fileName}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".psucalc", fileName))
	}
	return paths
}

func defaultCLI() *CLI {
	return &CLI{
		API:      APIConfig{BaseURL: "http://localhost:8080", Timeout: 5 * time.Second},
		Estimate: EstimateConfig{MarginPct: 20},
		Log:      LogConfig{Level: "warn"},
	}
}

// LoadCLI reads the first ini file found in SearchPaths. A missing file is not
// an error; defaults apply.
func LoadCLI() (*CLI, error) {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadCLIFile(p)
		}
	}
	return defaultCLI(), nil
}

func LoadCLIFile(path string) (*CLI, error) {
	cfg := defaultCLI()
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	cfg.Path = path

	api := f.Section("api")
	if v := strings.TrimSpace(api.Key("base_url").String()); v != "" {
		cfg.API.BaseURL = v
	}
	if api.HasKey("timeout") {
		d, err := api.Key("timeout").Duration()
		if err != nil {
			return nil, fmt.Errorf("%s: api.timeout: %w", path, err)
		}
		cfg.API.Timeout = d
	}

	if est := f.Section("estimate"); est.HasKey("margin") {
		m, err := est.Key("margin").Int()
		if err != nil {
			return nil, fmt.Errorf("%s: estimate.margin: %w", path, err)
		}
		cfg.Estimate.MarginPct = m
	}

	if v := strings.TrimSpace(f.Section("log").Key("level").String()); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	return cfg, nil
}

// Server is the API server configuration, taken from the environment after
// loading an optional .env file.
type Server struct {
	// Host is the listen address. It defaults to 127.0.0.1 unless ADMIN_TOKEN
	// is set, since catalog writes are open without a token.
	Host         string
	Port         string
	DBDriver     string
	DBDSN        string
	SeedCatalog  bool
	RateLimitRPS int
	AdminToken   string
	LogLevel     string
}

func LoadServer() Server {
	_ = godotenv.Load()

	s := Server{
		Port:         getenv("PORT", "8080"),
		DBDriver:     strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:        strings.TrimSpace(os.Getenv("DB_DSN")),
		SeedCatalog:  getenv("SEED_CATALOG", "true") == "true",
		RateLimitRPS: 60,
		AdminToken:   os.Getenv("ADMIN_TOKEN"),
		LogLevel:     strings.ToLower(getenv("LOG_LEVEL", "info")),
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &s.RateLimitRPS); err != nil {
			s.RateLimitRPS = 60
		}
	}
	if s.DBDSN == "" {
		s.DBDSN = defaultDSN(s.DBDriver)
	}
	s.Host = strings.TrimSpace(os.Getenv("HOST"))
	if s.Host == "" && s.AdminToken == "" {
		s.Host = "127.0.0.1"
	}
	return s
}

func defaultDSN(driver string) string {
	if driver != "postgres" {
		return getenv("DB_PATH", filepath.Join("data", "psucalc.db"))
	}
	host := getenv("DB_HOST", "localhost")
	port := getenv("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	if user == "" {
		user = getenv("POSTGRES_USER", "postgres")
	}
	pass := os.Getenv("DB_PASSWORD")
	if pass == "" {
		pass = getenv("POSTGRES_PASSWORD", "postgres")
	}
	name := os.Getenv("DB_NAME")
	if name == "" {
		name = getenv("POSTGRES_DB", "psucalc")
	}
	ssl := getenv("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
