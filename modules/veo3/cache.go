package veo3

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// VideoPathPrefix - 캐시된 비디오의 재생 URL 경로
const VideoPathPrefix = "/videos/"

type cachedVideo struct {
	data      []byte
	mimeType  string
	createdAt time.Time
}

// VideoCache - Supabase 미설정 시 생성된 비디오를 메모리에 보관
type VideoCache struct {
	mu     sync.RWMutex
	videos map[string]*cachedVideo
}

// NewVideoCache - 비디오 캐시 생성
func NewVideoCache() *VideoCache {
	return &VideoCache{videos: make(map[string]*cachedVideo)}
}

// Put - 비디오 저장 후 재생 URL 반환
func (c *VideoCache) Put(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "video/mp4"
	}
	id := uuid.NewString()

	c.mu.Lock()
	c.videos[id] = &cachedVideo{data: data, mimeType: mimeType, createdAt: time.Now()}
	count := len(c.videos)
	c.mu.Unlock()

	log.Printf("💾 [VideoCache] Stored video %s (%d bytes, cached: %d)", id, len(data), count)
	return VideoPathPrefix + id
}

// Get - 캐시된 비디오 조회
func (c *VideoCache) Get(id string) ([]byte, string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.videos[id]
	if !ok {
		return nil, "", false
	}
	return v.data, v.mimeType, true
}

// Release - 재생 URL에 해당하는 비디오 해제 (캐시 URL이 아니면 무시)
func (c *VideoCache) Release(url string) {
	id, ok := strings.CutPrefix(url, VideoPathPrefix)
	if !ok || id == "" {
		return
	}

	c.mu.Lock()
	_, existed := c.videos[id]
	delete(c.videos, id)
	c.mu.Unlock()

	if existed {
		log.Printf("🧹 [VideoCache] Released video %s", id)
	}
}

// Len - 캐시된 비디오 수
func (c *VideoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.videos)
}
