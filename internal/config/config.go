/* 환경 변수 기반 설정 로딩 및 검증 */

package config

import (
	"log"
	"os"
)

type Config struct {
	Port string

	// Supabase 백엔드 접속 정보
	SupabaseURL string
	SupabaseKey string

	// 이메일 확인(verify) 토큰 타입: "signup" 또는 "email"
	ConfirmTokenType string

	// 채팅/RAG 관련 설정
	OpenAIAPIKey string
	ChatModel    string
	DataDir      string
	IndexDir     string
}

// 필수 값이 없으면 기동 중단
func Load() *Config {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_KEY"),
		ConfirmTokenType: getEnv("CONFIRM_TOKEN_TYPE", "signup"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		ChatModel:        getEnv("CHAT_MODEL", "gpt-3.5-turbo"),
		DataDir:          getEnv("CHAT_DATA_DIR", "./data"),
		IndexDir:         getEnv("CHAT_INDEX_DIR", "./index"),
	}

	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		log.Fatal("[Fatal] SUPABASE_URL and SUPABASE_KEY must be set")
	}
	if cfg.ConfirmTokenType != "signup" && cfg.ConfirmTokenType != "email" {
		log.Fatalf("[Fatal] CONFIRM_TOKEN_TYPE must be \"signup\" or \"email\", got %q", cfg.ConfirmTokenType)
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY environment variable is not set. Chat endpoints will be disabled.")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
