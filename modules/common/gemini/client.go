package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"veo-studio-server/modules/common/config"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ClientFactory - 백엔드별 genai 클라이언트 생성
// Gemini API: 세션마다 다른 API 키를 쓰므로 요청마다 생성
// Vertex AI: 서비스 계정 하나로 공유 클라이언트 재사용
type ClientFactory struct {
	cfg *config.Config

	mu     sync.Mutex
	vertex *genai.Client
}

// NewClientFactory - 클라이언트 팩토리 생성
func NewClientFactory(cfg *config.Config) *ClientFactory {
	return &ClientFactory{cfg: cfg}
}

// Backend - 설정된 백엔드
func (f *ClientFactory) Backend() genai.Backend {
	if f.cfg.GeminiBackend == config.BackendVertex {
		return genai.BackendVertexAI
	}
	return genai.BackendGeminiAPI
}

// NewClient - API 키 또는 Vertex 자격 증명으로 클라이언트 생성
func (f *ClientFactory) NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if f.Backend() == genai.BackendVertexAI {
		return f.vertexClient(ctx)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("no API key provided")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

func (f *ClientFactory) vertexClient(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.vertex != nil {
		return f.vertex, nil
	}

	cc := &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  f.cfg.VertexProject,
		Location: f.cfg.VertexLocation,
	}

	// 1. VERTEXAI_CREDENTIALS_JSON (Render 배포용, 또는 PATH에서 읽어온 값)
	if credsJSON := f.cfg.VertexCredentialsJSON; credsJSON != "" {
		// JSON 유효성 검사
		var credsMap map[string]interface{}
		if err := json.Unmarshal([]byte(credsJSON), &credsMap); err != nil {
			return nil, fmt.Errorf("invalid JSON credentials: %w", err)
		}
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          []string{cloudPlatformScope},
			CredentialsJSON: []byte(credsJSON),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load Vertex AI credentials: %w", err)
		}
		log.Println("✅ [VertexAI] Using credentials from VERTEXAI_CREDENTIALS_JSON")
		cc.Credentials = creds
	} else {
		// 2. Application Default Credentials (ADC) 사용
		log.Println("⚠️  [VertexAI] No explicit credentials found, using Application Default Credentials")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	log.Printf("✅ [VertexAI] Client initialized for project=%s, location=%s", f.cfg.VertexProject, f.cfg.VertexLocation)
	f.vertex = client
	return client, nil
}
