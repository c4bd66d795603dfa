package sample

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync"

	"veo-studio-server/modules/common/model"
	"veo-studio-server/modules/common/utils"
)

// Prompt - 원클릭 샘플 요청 프롬프트
const Prompt = "A cinematic shot of a car driving on a rainy street at night, with neon lights reflecting on the wet pavement."

const (
	fileName       = "sample.png"
	mimeType       = "image/png"
	previewQuality = 80
)

// Asset - 디코딩된 샘플 이미지
type Asset struct {
	File        model.ImageFile
	Width       int
	Height      int
	PreviewWebP []byte
}

// Loader - 내장 샘플 이미지를 프로세스당 한 번만 디코딩
type Loader struct {
	encoded string

	once  sync.Once
	asset *Asset
	err   error

	mu       sync.RWMutex
	released bool
}

// NewLoader - 내장 샘플 이미지 로더
func NewLoader() *Loader {
	return &Loader{encoded: nightStreetPNG}
}

// Load - 샘플 에셋 반환 (첫 호출에서 디코딩, 이후 캐시)
func (l *Loader) Load(ctx context.Context) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.once.Do(func() {
		l.asset, l.err = decode(l.encoded)
		if l.err != nil {
			log.Printf("❌ [Sample] Failed to decode sample asset: %v", l.err)
			return
		}
		log.Printf("✅ [Sample] Sample asset ready (%dx%d, preview: %d bytes)",
			l.asset.Width, l.asset.Height, len(l.asset.PreviewWebP))
	})
	return l.asset, l.err
}

// Preview - WebP 미리보기 (Release 이후 또는 로드 실패 시 false)
func (l *Loader) Preview(ctx context.Context) ([]byte, bool) {
	asset, err := l.Load(ctx)
	if err != nil {
		return nil, false
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.released || len(asset.PreviewWebP) == 0 {
		return nil, false
	}
	return asset.PreviewWebP, true
}

// Release - 미리보기 버퍼 해제 (서버 종료 시)
func (l *Loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return
	}
	l.released = true
	if l.asset != nil {
		l.asset.PreviewWebP = nil
	}
	log.Println("🧹 [Sample] Preview released")
}

func decode(encoded string) (*Asset, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode sample base64: %w", err)
	}

	img, _, err := utils.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	asset := &Asset{
		File: model.ImageFile{
			Name:     fileName,
			MIMEType: mimeType,
			Base64:   base64.StdEncoding.EncodeToString(data),
		},
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	// 미리보기 실패는 치명적이지 않음
	preview, err := utils.ConvertToWebP(data, previewQuality)
	if err != nil {
		log.Printf("⚠️  [Sample] WebP preview unavailable: %v", err)
	} else {
		asset.PreviewWebP = preview
	}
	return asset, nil
}

// Request - 원클릭 샘플 생성 요청
func Request(asset *Asset) *model.GenerationRequest {
	start := asset.File
	return &model.GenerationRequest{
		Mode:        model.ModeFramesToVideo,
		Prompt:      Prompt,
		Model:       model.ModelVeoFast,
		AspectRatio: model.AspectLandscape,
		Resolution:  model.Resolution720p,
		StartFrame:  &start,
		IsLooping:   true,
	}
}
