package gemini

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Is429Error - 429 Rate Limit 에러인지 확인
func Is429Error(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	errStr := strings.ToLower(err.Error())
	// Gemini API 429 에러 패턴 체크
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "resource_exhausted")
}

// OperationError - 완료된 long-running operation의 에러 필드를 error로 변환
func OperationError(fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if msg, ok := fields["message"].(string); ok && msg != "" {
		return errors.New(msg)
	}
	return errors.New("video generation operation failed")
}
