package gemini

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/genai"
)

const maxRetries = 3

// retryDelay - 429 재시도 간격
var retryDelay = 2 * time.Second

// SubmitFunc - Veo 생성 요청 한 번을 보내는 함수
type SubmitFunc func(ctx context.Context) (*genai.GenerateVideosOperation, error)

// GenerateVideosWithRetry - 429 에러 시 같은 요청을 최대 3번 재시도
// 429가 아닌 에러는 재시도 없이 바로 반환
func GenerateVideosWithRetry(ctx context.Context, submit SubmitFunc) (*genai.GenerateVideosOperation, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			log.Printf("   🔄 [Gemini Retry] Retry attempt %d/%d", attempt, maxRetries)
		}

		op, err := submit(ctx)
		if err == nil {
			if attempt > 1 {
				log.Printf("✅ [Gemini Retry] Success on attempt %d/%d", attempt, maxRetries)
			}
			return op, nil
		}

		lastErr = err

		// 429가 아닌 다른 에러면 바로 반환 (재시도 안 함)
		if !Is429Error(err) {
			log.Printf("❌ [Gemini Retry] Failed with non-429 error: %v", err)
			return nil, err
		}

		log.Printf("⚠️  [Gemini Retry] Hit rate limit (429) on attempt %d/%d", attempt, maxRetries)

		// 마지막 시도가 아니면 대기 후 재시도
		if attempt < maxRetries {
			log.Printf("   ⏳ Waiting %s before retry...", retryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}

	return nil, fmt.Errorf("rate limited after %d attempts, last error: %w", maxRetries, lastErr)
}
