package veo3

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"

	"veo-studio-server/modules/common/gemini"
	"veo-studio-server/modules/common/model"
)

// KeyResolver - 세션에 사용할 API 키 조회
type KeyResolver interface {
	ResolveAPIKey(ctx context.Context, sessionID string) (string, error)
}

// Uploader - 생성된 비디오를 외부 저장소에 올리고 public URL 반환
type Uploader interface {
	UploadVideo(ctx context.Context, videoData []byte, mimeType, sessionID string) (string, error)
}

// HistoryRecorder - 생성 기록 (실패해도 생성은 계속)
type HistoryRecorder interface {
	RecordGeneration(ctx context.Context, sessionID string, req *model.GenerationRequest, modelName string) (string, error)
	CompleteGeneration(ctx context.Context, generationID, videoURL string) error
	FailGeneration(ctx context.Context, generationID, message string) error
}

// videoBackend - genai 호출 경계 (테스트에서 교체)
type videoBackend interface {
	GenerateVideos(ctx context.Context, req *VideosRequest) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
	Download(ctx context.Context, video *genai.Video) ([]byte, error)
}

type backendFactory func(ctx context.Context, apiKey string) (videoBackend, error)

type Service struct {
	cfg        *Config
	backend    genai.Backend
	newBackend backendFactory
	keys       KeyResolver
	uploader   Uploader
	cache      *VideoCache
	history    HistoryRecorder
}

// NewService - Veo 생성 서비스
// uploader/history 는 nil 가능 (Supabase 미설정)
func NewService(cfg *Config, clients *gemini.ClientFactory, keys KeyResolver, uploader Uploader, cache *VideoCache, history HistoryRecorder) *Service {
	backend := clients.Backend()
	return &Service{
		cfg:     cfg,
		backend: backend,
		newBackend: func(ctx context.Context, apiKey string) (videoBackend, error) {
			client, err := clients.NewClient(ctx, apiKey)
			if err != nil {
				return nil, err
			}
			return &genaiBackend{client: client, backend: backend}, nil
		},
		keys:     keys,
		uploader: uploader,
		cache:    cache,
		history:  history,
	}
}

// Generate - 요청 한 번을 끝까지 실행 (제출 → 폴링 → 비디오 획득 → 게시)
func (s *Service) Generate(ctx context.Context, sessionID string, req *model.GenerationRequest) (*model.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerationTimeout)
		defer cancel()
	}

	// 1. API 키 확인
	apiKey, err := s.keys.ResolveAPIKey(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve API key: %w", err)
	}
	if apiKey == "" && s.backend != genai.BackendVertexAI {
		log.Printf("🔑 [Veo] No API key for session %s", sessionID)
		return nil, &model.CredentialError{SessionID: sessionID}
	}

	// 2. 요청 변환
	vreq, err := BuildVideosRequest(req, s.backend, s.cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("🎬 [Veo] Session %s: %s with %s (%s, %s)", sessionID, req.Mode, vreq.Model, req.Resolution, req.AspectRatio)

	generationID := s.recordStart(ctx, sessionID, req, vreq.Model)

	result, err := s.run(ctx, sessionID, apiKey, vreq)
	if err != nil {
		log.Printf("❌ [Veo] Session %s generation failed: %v", sessionID, err)
		s.recordFailure(ctx, generationID, err)
		return nil, err
	}

	s.recordSuccess(ctx, generationID, result.PlayableURL)
	log.Printf("✅ [Veo] Session %s generation completed: %s", sessionID, result.PlayableURL)
	return result, nil
}

func (s *Service) run(ctx context.Context, sessionID, apiKey string, vreq *VideosRequest) (*model.GenerationResult, error) {
	client, err := s.newBackend(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	// 3. 제출 (429 재시도)
	op, err := gemini.GenerateVideosWithRetry(ctx, func(ctx context.Context) (*genai.GenerateVideosOperation, error) {
		return client.GenerateVideos(ctx, vreq)
	})
	if err != nil {
		return nil, err
	}

	// 4. 완료까지 폴링
	op, err = s.waitForOperation(ctx, client, op)
	if err != nil {
		return nil, err
	}
	if opErr := gemini.OperationError(op.Error); opErr != nil {
		return nil, opErr
	}

	// 5. 결과 확인
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		if op.Response != nil && op.Response.RAIMediaFilteredCount > 0 {
			log.Printf("⚠️  [Veo] %d video(s) filtered: %v", op.Response.RAIMediaFilteredCount, op.Response.RAIMediaFilteredReasons)
		}
		return nil, ErrNoVideos
	}
	video := op.Response.GeneratedVideos[0].Video
	mimeType := video.MIMEType
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	// 6. 비디오 바이트 확보
	data := video.VideoBytes
	if len(data) == 0 {
		log.Printf("📥 [Veo] Downloading generated video: %s", video.URI)
		if data, err = client.Download(ctx, video); err != nil {
			return nil, fmt.Errorf("failed to download video: %w", err)
		}
	}

	// 7. 게시
	playableURL, err := s.publish(ctx, sessionID, data, mimeType)
	if err != nil {
		return nil, err
	}

	return &model.GenerationResult{
		Video:       model.VideoHandle{URI: video.URI, MIMEType: mimeType},
		PlayableURL: playableURL,
	}, nil
}

func (s *Service) waitForOperation(ctx context.Context, client videoBackend, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	started := time.Now()
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.cfg.PollInterval):
		}

		next, err := client.GetVideosOperation(ctx, op)
		if err != nil {
			return nil, fmt.Errorf("failed to poll operation %s: %w", op.Name, err)
		}
		op = next
		log.Printf("⏳ [Veo] Operation %s done=%v (elapsed: %s)", op.Name, op.Done, time.Since(started).Round(time.Second))
	}
	return op, nil
}

func (s *Service) publish(ctx context.Context, sessionID string, data []byte, mimeType string) (string, error) {
	if s.uploader != nil {
		url, err := s.uploader.UploadVideo(ctx, data, mimeType, sessionID)
		if err == nil {
			return url, nil
		}
		if s.cache == nil {
			return "", err
		}
		log.Printf("⚠️  [Veo] Upload failed, serving from memory: %v", err)
	}
	if s.cache == nil {
		return "", fmt.Errorf("no video destination configured")
	}
	return s.cache.Put(data, mimeType), nil
}

func (s *Service) recordStart(ctx context.Context, sessionID string, req *model.GenerationRequest, modelName string) string {
	if s.history == nil {
		return ""
	}
	id, err := s.history.RecordGeneration(ctx, sessionID, req, modelName)
	if err != nil {
		log.Printf("⚠️  [Veo] Failed to record generation: %v", err)
		return ""
	}
	return id
}

func (s *Service) recordSuccess(ctx context.Context, generationID, url string) {
	if s.history == nil || generationID == "" {
		return
	}
	if err := s.history.CompleteGeneration(context.WithoutCancel(ctx), generationID, url); err != nil {
		log.Printf("⚠️  [Veo] Failed to complete generation %s: %v", generationID, err)
	}
}

func (s *Service) recordFailure(ctx context.Context, generationID string, cause error) {
	if s.history == nil || generationID == "" {
		return
	}
	if err := s.history.FailGeneration(context.WithoutCancel(ctx), generationID, cause.Error()); err != nil {
		log.Printf("⚠️  [Veo] Failed to mark generation %s failed: %v", generationID, err)
	}
}

// genaiBackend - genai SDK 구현
type genaiBackend struct {
	client  *genai.Client
	backend genai.Backend
}

func (b *genaiBackend) GenerateVideos(ctx context.Context, req *VideosRequest) (*genai.GenerateVideosOperation, error) {
	return b.client.Models.GenerateVideosFromSource(ctx, req.Model, req.Source, req.Config)
}

func (b *genaiBackend) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	return b.client.Operations.GetVideosOperation(ctx, op, nil)
}

func (b *genaiBackend) Download(ctx context.Context, video *genai.Video) ([]byte, error) {
	if b.backend == genai.BackendVertexAI {
		return nil, fmt.Errorf("vertex backend returned no inline video bytes")
	}
	return b.client.Files.Download(ctx, genai.NewDownloadURIFromVideo(video), nil)
}
