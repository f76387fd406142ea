package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string
	Port     string
	LogLevel string

	BlobStore   string
	RecordStore string

	DatabaseURL  string
	SslCertPath  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	S3Endpoint   string

	AIProvider    string
	OpenAIKey     string
	OpenAIBaseURL string
	GeminiKey     string
	GenModel      string

	MaxExcerptChars    int
	MaxUploadBytes     int64
	SummaryMaxTokens   int
	SummaryTemperature float32
	AnswerMaxTokens    int
	AnswerTemperature  float32
	ExtractTimeout     time.Duration
	CompletionTimeout  time.Duration
	PDFBackend         string

	CompletionCacheSize int
	CompletionCacheTTL  time.Duration

	CORSOrigins []string
}

// LoadConfig loads .env, the optional YAML file named by CONFIG_FILE, then the environment.
// Environment variables win over the file, the file wins over defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	src := source{file: file}

	cfg := &Config{
		Env:      src.str("ENV", "local"),
		Port:     src.str("PORT", "8080"),
		LogLevel: src.str("LOG_LEVEL", ""),

		BlobStore:   strings.ToLower(src.str("BLOB_STORE", "memory")),
		RecordStore: strings.ToLower(src.str("RECORD_STORE", "memory")),

		DatabaseURL:  src.str("DATABASE_URL", ""),
		SslCertPath:  src.str("SSL_CERT_PATH", ""),
		AwsAccessKey: src.str("AWS_ACCESS_KEY", ""),
		AwsSecretKey: src.str("AWS_SECRET_KEY", ""),
		AwsRegion:    src.str("AWS_REGION", "us-east-2"),
		BucketName:   src.str("BUCKET_NAME", "docquery-docs"),
		S3Endpoint:   src.str("S3_ENDPOINT", ""),

		AIProvider:    strings.ToLower(src.str("AI_PROVIDER", "openai")),
		OpenAIKey:     src.str("OPENAI_API_KEY", ""),
		OpenAIBaseURL: src.str("OPENAI_BASE_URL", ""),
		GeminiKey:     src.str("GEMINI_API_KEY", ""),
		GenModel:      src.str("GEN_MODEL", ""),

		PDFBackend: strings.ToLower(src.str("PDF_BACKEND", "native")),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg.MaxExcerptChars, err = src.integer("MAX_EXCERPT_CHARS", 10000)
	collect(err)
	maxUpload, err := src.integer("MAX_UPLOAD_BYTES", 10<<20)
	collect(err)
	cfg.MaxUploadBytes = int64(maxUpload)
	cfg.SummaryMaxTokens, err = src.integer("SUMMARY_MAX_TOKENS", 300)
	collect(err)
	cfg.SummaryTemperature, err = src.float("SUMMARY_TEMPERATURE", 0.5)
	collect(err)
	cfg.AnswerMaxTokens, err = src.integer("ANSWER_MAX_TOKENS", 500)
	collect(err)
	cfg.AnswerTemperature, err = src.float("ANSWER_TEMPERATURE", 0.7)
	collect(err)
	cfg.ExtractTimeout, err = src.duration("EXTRACT_TIMEOUT", 30*time.Second)
	collect(err)
	cfg.CompletionTimeout, err = src.duration("COMPLETION_TIMEOUT", 60*time.Second)
	collect(err)
	cfg.CompletionCacheSize, err = src.integer("COMPLETION_CACHE_SIZE", 0)
	collect(err)
	cfg.CompletionCacheTTL, err = src.duration("COMPLETION_CACHE_TTL", time.Hour)
	collect(err)

	for _, o := range strings.Split(src.str("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %q", c.Port)
	}
	switch c.BlobStore {
	case "memory":
	case "s3":
		if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			return errors.New("AWS credentials not set")
		}
		if c.BucketName == "" {
			return errors.New("BUCKET_NAME not set")
		}
	default:
		return fmt.Errorf("BLOB_STORE must be memory or s3, got %q", c.BlobStore)
	}
	switch c.RecordStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL not set")
		}
	default:
		return fmt.Errorf("RECORD_STORE must be memory or postgres, got %q", c.RecordStore)
	}
	switch c.AIProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("AI_PROVIDER must be openai or gemini, got %q", c.AIProvider)
	}
	switch c.PDFBackend {
	case "native", "docconv":
	default:
		return fmt.Errorf("PDF_BACKEND must be native or docconv, got %q", c.PDFBackend)
	}
	if c.MaxExcerptChars <= 0 {
		return fmt.Errorf("MAX_EXCERPT_CHARS must be positive, got %d", c.MaxExcerptChars)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.SummaryTemperature < 0 || c.SummaryTemperature > 2 || c.AnswerTemperature < 0 || c.AnswerTemperature > 2 {
		return errors.New("temperatures must be between 0 and 2")
	}
	return nil
}

type source struct {
	file map[string]string
}

// str reads key from the environment, then the config file, then falls back.
func (s source) str(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if value, ok := s.file[key]; ok {
		return value
	}
	return fallback
}

func (s source) integer(key string, def int) (int, error) {
	v := strings.TrimSpace(s.str(key, ""))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s=%q is not an integer", key, v)
	}
	return n, nil
}

func (s source) float(key string, def float32) (float32, error) {
	v := strings.TrimSpace(s.str(key, ""))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def, fmt.Errorf("%s=%q is not a number", key, v)
	}
	return float32(f), nil
}

func (s source) duration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(s.str(key, ""))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s=%q is not a duration", key, v)
	}
	return d, nil
}

// loadFile reads a flat YAML mapping of the same keys as the environment.
func loadFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
