package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Server
	Port string

	// Gemini / Veo
	GeminiAPIKey          string
	GeminiBackend         string
	VertexProject         string
	VertexLocation        string
	VertexCredentialsJSON string
	VeoFastModel          string
	VeoModel              string
	VeoPollInterval       time.Duration
	VeoGenerationTimeout  time.Duration

	// Credential selection
	CredentialSelectionEnabled bool

	// Redis
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL           string
	SupabaseServiceKey    string
	SupabaseStorageBucket string

	// Session
	SessionInactiveTimeout time.Duration
}

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Veo: backend=%s fast=%s quality=%s (poll: %s)",
		cfg.GeminiBackend, cfg.VeoFastModel, cfg.VeoModel, cfg.VeoPollInterval)
	log.Printf("   Credential selection: %v", cfg.CredentialSelectionEnabled)
	if cfg.RedisEnabled {
		log.Printf("   Redis: %s (TLS: %v)", cfg.GetRedisAddr(), cfg.RedisUseTLS)
	} else {
		log.Println("   Redis: disabled (in-memory credential store)")
	}
	if cfg.SupabaseEnabled() {
		log.Printf("   Supabase: %s (bucket: %s)", cfg.SupabaseURL, cfg.SupabaseStorageBucket)
	} else {
		log.Println("   Supabase: disabled (videos served from memory)")
	}

	return cfg, nil
}

// FromEnv - 현재 프로세스 환경변수에서 Config 생성 (.env 로드 없음)
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiBackend:         getEnv("GEMINI_BACKEND", BackendGemini),
		VertexProject:         getEnv("VERTEXAI_PROJECT", ""),
		VertexLocation:        getEnv("VERTEXAI_LOCATION", "us-central1"),
		VertexCredentialsJSON: getEnv("VERTEXAI_CREDENTIALS_JSON", ""),
		VeoFastModel:          getEnv("VEO_FAST_MODEL", "veo-3.1-fast-generate-preview"),
		VeoModel:              getEnv("VEO_MODEL", "veo-3.1-generate-preview"),
		VeoPollInterval:       getDuration("VEO_POLL_INTERVAL", 10*time.Second),
		VeoGenerationTimeout:  getDuration("VEO_GENERATION_TIMEOUT", 10*time.Minute),

		CredentialSelectionEnabled: getBool("CREDENTIAL_SELECTION_ENABLED", true),

		RedisEnabled:  getBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   getBool("REDIS_USE_TLS", true),

		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "generated-videos"),

		SessionInactiveTimeout: getDuration("SESSION_INACTIVE_TIMEOUT", 2*time.Hour),
	}

	// VERTEXAI_CREDENTIALS_PATH (로컬 테스트용)
	if cfg.VertexCredentialsJSON == "" {
		if path := os.Getenv("VERTEXAI_CREDENTIALS_PATH"); path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read VERTEXAI_CREDENTIALS_PATH: %w", err)
			}
			cfg.VertexCredentialsJSON = string(data)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	switch c.GeminiBackend {
	case BackendGemini:
		// 키 선택이 꺼져 있으면 서버 공용 키가 반드시 필요
		if !c.CredentialSelectionEnabled && c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when CREDENTIAL_SELECTION_ENABLED=false")
		}
	case BackendVertex:
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEXAI_PROJECT is required for the vertex backend")
		}
	default:
		return fmt.Errorf("unknown GEMINI_BACKEND %q (want %q or %q)", c.GeminiBackend, BackendGemini, BackendVertex)
	}
	if c.VeoPollInterval <= 0 {
		return fmt.Errorf("VEO_POLL_INTERVAL must be positive")
	}
	if c.SupabaseURL != "" && c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required when SUPABASE_URL is set")
	}
	return nil
}

// SupabaseEnabled - Supabase 설정 여부
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceKey != ""
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid boolean for %s=%q, using default %v", key, raw, defaultValue)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid duration for %s=%q, using default %s", key, raw, defaultValue)
	}
	return defaultValue
}
