package model

import (
	"fmt"
	"strings"
	"time"

	"veo-studio-server/modules/common/utils"
)

// GenerationMode - 생성 모드
type GenerationMode string

const (
	ModeTextToVideo       GenerationMode = "Text to Video"
	ModeFramesToVideo     GenerationMode = "Frames to Video"
	ModeReferencesToVideo GenerationMode = "References to Video"
	ModeExtendVideo       GenerationMode = "Extend Video"
)

// Resolution - 출력 해상도
type Resolution string

const (
	Resolution720p  Resolution = "720p"
	Resolution1080p Resolution = "1080p"
)

// ExtensionResolution - 확장(Extend) 가능한 유일한 해상도
const ExtensionResolution = Resolution720p

// AspectRatio - 화면 비율
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

// VeoModel - 모델 variant (실제 모델명은 config에서 매핑)
type VeoModel string

const (
	ModelVeoFast VeoModel = "veo-3.1-fast-generate-preview"
	ModelVeo     VeoModel = "veo-3.1-generate-preview"
)

// ImageFile - 브라우저에서 받은 이미지 (base64 인코딩)
type ImageFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

// Decode - 순수 base64 또는 data URL 디코딩
// MIME 타입은 명시된 값 우선, 없으면 data URL 헤더 값
func (f *ImageFile) Decode() (string, []byte, error) {
	mimeType, data, err := utils.ParseDataURL(f.Base64)
	if err != nil {
		return "", nil, fmt.Errorf("decode image %q: %w", f.Name, err)
	}
	if f.MIMEType != "" {
		mimeType = f.MIMEType
	}
	return mimeType, data, nil
}

// VideoFile - 업로드된 원본 비디오 (base64 인코딩)
type VideoFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mimeType"`
	Base64   string `json:"base64"`
}

// VideoHandle - Veo가 반환한 비디오 참조 (확장 요청에 재사용)
type VideoHandle struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
}

// GenerationRequest - 한 번의 생성 시도를 설명하는 파라미터 (제출 후 불변)
type GenerationRequest struct {
	Mode             GenerationMode `json:"mode"`
	Prompt           string         `json:"prompt"`
	Model            VeoModel       `json:"model"`
	AspectRatio      AspectRatio    `json:"aspectRatio"`
	Resolution       Resolution     `json:"resolution"`
	StartFrame       *ImageFile     `json:"startFrame,omitempty"`
	EndFrame         *ImageFile     `json:"endFrame,omitempty"`
	ReferenceImages  []ImageFile    `json:"referenceImages,omitempty"`
	StyleImage       *ImageFile     `json:"styleImage,omitempty"`
	InputVideo       *VideoFile     `json:"inputVideo,omitempty"`
	InputVideoObject *VideoHandle   `json:"inputVideoObject,omitempty"`
	IsLooping        bool           `json:"isLooping"`
}

// Clone - 깊은 복사 (제출된 요청은 공유하지 않음)
func (r *GenerationRequest) Clone() *GenerationRequest {
	if r == nil {
		return nil
	}
	out := *r
	if r.StartFrame != nil {
		f := *r.StartFrame
		out.StartFrame = &f
	}
	if r.EndFrame != nil {
		f := *r.EndFrame
		out.EndFrame = &f
	}
	if r.StyleImage != nil {
		f := *r.StyleImage
		out.StyleImage = &f
	}
	if r.InputVideo != nil {
		v := *r.InputVideo
		out.InputVideo = &v
	}
	if r.InputVideoObject != nil {
		v := *r.InputVideoObject
		out.InputVideoObject = &v
	}
	if r.ReferenceImages != nil {
		out.ReferenceImages = append([]ImageFile(nil), r.ReferenceImages...)
	}
	return &out
}

// Validate - 요청 필드 검증
func (r *GenerationRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is required")
	}
	switch r.Mode {
	case ModeTextToVideo:
		if strings.TrimSpace(r.Prompt) == "" {
			return fmt.Errorf("prompt is required for %s", r.Mode)
		}
	case ModeFramesToVideo:
		if r.StartFrame == nil {
			return fmt.Errorf("startFrame is required for %s", r.Mode)
		}
	case ModeReferencesToVideo:
		if len(r.ReferenceImages) == 0 && r.StyleImage == nil {
			return fmt.Errorf("at least one reference or style image is required for %s", r.Mode)
		}
	case ModeExtendVideo:
		if r.InputVideoObject == nil || r.InputVideoObject.URI == "" {
			return fmt.Errorf("inputVideoObject is required for %s", r.Mode)
		}
	default:
		return fmt.Errorf("unknown mode %q", r.Mode)
	}

	switch r.Resolution {
	case Resolution720p, Resolution1080p:
	default:
		return fmt.Errorf("unknown resolution %q", r.Resolution)
	}
	switch r.AspectRatio {
	case AspectLandscape, AspectPortrait:
	default:
		return fmt.Errorf("unknown aspect ratio %q", r.AspectRatio)
	}
	switch r.Model {
	case ModelVeoFast, ModelVeo:
	default:
		return fmt.Errorf("unknown model %q", r.Model)
	}
	return nil
}

// GenerationResult - 성공한 생성 결과
type GenerationResult struct {
	Video       VideoHandle `json:"video"`
	PlayableURL string      `json:"playableUrl"`
}

// CredentialError - 세션에 사용할 API 키가 없음 (세션 키도 공용 키도 없음)
type CredentialError struct {
	SessionID string
}

func (e *CredentialError) Error() string {
	return "Requested entity was not found: no API key selected for session " + e.SessionID
}

// Generation - veo_generations 테이블 구조
type Generation struct {
	GenerationID string     `json:"generation_id"`
	SessionID    string     `json:"session_id"`
	Mode         string     `json:"mode"`
	Model        string     `json:"model"`
	Prompt       string     `json:"prompt"`
	Resolution   string     `json:"resolution"`
	AspectRatio  string     `json:"aspect_ratio"`
	Status       string     `json:"status"`
	VideoURL     *string    `json:"video_url"`
	ErrorMessage *string    `json:"error_message"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
