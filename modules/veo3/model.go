package veo3

import (
	"errors"

	"google.golang.org/genai"
)

// ErrNoVideos - 생성 결과에 비디오가 없음
var ErrNoVideos = errors.New("No videos were generated.")

// VideosRequest - genai 호출 단위로 변환된 생성 요청
type VideosRequest struct {
	Model  string
	Source *genai.GenerateVideosSource
	Config *genai.GenerateVideosConfig

	// Instance/Parameters - SDK 타입으로 표현할 수 없는 필드 (요청 body에 직접 주입)
	Instance   map[string]any
	Parameters map[string]any
}
