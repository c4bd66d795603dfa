package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"veo-studio-server/modules/common/config"
)

type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewClient - Storage 클라이언트 생성 (Supabase 미설정이면 nil)
func NewClient(cfg *config.Config) *Client {
	if !cfg.SupabaseEnabled() {
		return nil
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		serviceKey: cfg.SupabaseServiceKey,
		bucket:     cfg.SupabaseStorageBucket,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// UploadVideo - Supabase Storage에 비디오 업로드, public URL 반환
func (c *Client) UploadVideo(ctx context.Context, videoData []byte, mimeType, sessionID string) (string, error) {
	if mimeType == "" {
		mimeType = "video/mp4"
	}

	// 파일 경로 생성
	fileName := fmt.Sprintf("veo_%d_%s.mp4", time.Now().UnixMilli(), uuid.NewString()[:8])
	filePath := fmt.Sprintf("veo-videos/session-%s/%s", sessionID, fileName)

	log.Printf("📤 Uploading video to storage: %s (%d bytes)", filePath, len(videoData))

	// Supabase Storage API URL
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(videoData))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	publicURL := c.PublicURL(filePath)
	log.Printf("✅ Video uploaded successfully: %s", publicURL)
	return publicURL, nil
}

// PublicURL - 버킷 내 경로의 public URL
func (c *Client) PublicURL(filePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, filePath)
}
