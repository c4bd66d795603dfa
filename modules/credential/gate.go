package credential

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"veo-studio-server/modules/realtime"
)

const defaultSelectionTimeout = 10 * time.Minute

var (
	// ErrNoClientConnected - 키 선택 UI를 띄울 브라우저가 연결되어 있지 않음
	ErrNoClientConnected = errors.New("no browser client connected to session")
	// ErrSelectionTimeout - 사용자가 제한 시간 안에 키 선택을 끝내지 않음
	ErrSelectionTimeout = errors.New("credential selection timed out")
)

// Notifier - 세션 브라우저에 메시지를 보내는 채널 (realtime.Hub)
type Notifier interface {
	ClientCount(sessionID string) int
	Broadcast(sessionID string, message realtime.Message)
}

// Gate - 세션별 API 키 선택 여부 확인 및 선택 UI 호출
type Gate struct {
	store            Store
	notifier         Notifier
	sharedKey        string
	selectionEnabled bool
	timeout          time.Duration

	mu       sync.Mutex
	waiters  map[string]chan struct{}
	listener func(sessionID string)
}

// NewGate - 게이트 생성
// selectionEnabled=false 이면 서버 공용 키를 쓰고 선택 UI는 필요 없음
func NewGate(store Store, notifier Notifier, sharedKey string, selectionEnabled bool) *Gate {
	return &Gate{
		store:            store,
		notifier:         notifier,
		sharedKey:        sharedKey,
		selectionEnabled: selectionEnabled,
		timeout:          defaultSelectionTimeout,
		waiters:          make(map[string]chan struct{}),
	}
}

// SetListener - 키 저장/삭제 시 호출될 콜백 등록
func (g *Gate) SetListener(fn func(sessionID string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listener = fn
}

// HasSelectedCredential - 세션에 선택된 키가 있는지
// 서버 공용 키가 있으면 ResolveAPIKey가 그 키로 대체하므로 있는 것으로 봄
func (g *Gate) HasSelectedCredential(ctx context.Context, sessionID string) (bool, error) {
	if !g.selectionEnabled || g.sharedKey != "" {
		return true, nil
	}
	_, ok, err := g.store.Lookup(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// OpenCredentialSelection - 브라우저에 키 선택 UI 요청 후 완료될 때까지 대기
func (g *Gate) OpenCredentialSelection(ctx context.Context, sessionID string) error {
	if g.notifier.ClientCount(sessionID) == 0 {
		return ErrNoClientConnected
	}

	g.mu.Lock()
	done, exists := g.waiters[sessionID]
	if !exists {
		done = make(chan struct{})
		g.waiters[sessionID] = done
	}
	g.mu.Unlock()

	if !exists {
		log.Printf("🔑 [Credential] Requesting key selection for session %s", sessionID)
		g.notifier.Broadcast(sessionID, realtime.Message{Type: realtime.TypeCredentialSelection})
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		g.release(sessionID, done)
		return ctx.Err()
	case <-timer.C:
		g.release(sessionID, done)
		return ErrSelectionTimeout
	}
}

// Complete - 선택 UI 종료 (저장 또는 취소)
func (g *Gate) Complete(sessionID string) {
	g.mu.Lock()
	done, exists := g.waiters[sessionID]
	g.mu.Unlock()
	if !exists {
		return
	}
	g.release(sessionID, done)
	g.notifier.Broadcast(sessionID, realtime.Message{Type: realtime.TypeCredentialSelectionEnd})
	log.Printf("✅ [Credential] Key selection finished for session %s", sessionID)
}

// SaveAndComplete - 키 저장 후 대기 중인 선택 완료 처리
func (g *Gate) SaveAndComplete(ctx context.Context, sessionID, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("apiKey is required")
	}
	if err := g.store.Save(ctx, sessionID, apiKey); err != nil {
		return err
	}
	g.Complete(sessionID)
	g.notify(sessionID)
	return nil
}

// Clear - 세션 키 삭제
func (g *Gate) Clear(ctx context.Context, sessionID string) error {
	if err := g.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	g.notify(sessionID)
	return nil
}

// Forget - 세션 종료 시 대기 중인 선택과 저장된 키 정리
func (g *Gate) Forget(ctx context.Context, sessionID string) error {
	g.mu.Lock()
	if done, exists := g.waiters[sessionID]; exists {
		close(done)
		delete(g.waiters, sessionID)
	}
	g.mu.Unlock()

	return g.store.Clear(ctx, sessionID)
}

// ResolveAPIKey - 세션 키, 없으면 서버 공용 키
func (g *Gate) ResolveAPIKey(ctx context.Context, sessionID string) (string, error) {
	apiKey, ok, err := g.store.Lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if ok {
		return apiKey, nil
	}
	return g.sharedKey, nil
}

func (g *Gate) release(sessionID string, done chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if current, exists := g.waiters[sessionID]; exists && current == done {
		close(done)
		delete(g.waiters, sessionID)
	}
}

func (g *Gate) notify(sessionID string) {
	g.mu.Lock()
	listener := g.listener
	g.mu.Unlock()
	if listener != nil {
		listener(sessionID)
	}
}
