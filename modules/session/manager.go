package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"veo-studio-server/modules/realtime"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	defaultInactiveThreshold = 2 * time.Hour
	expiredThreshold         = 24 * time.Hour
	inactiveSweepInterval    = 5 * time.Minute
	expiredSweepInterval     = 30 * time.Minute
	forgetTimeout            = 5 * time.Second
)

// Broadcaster - 세션 상태를 브라우저로 밀어주는 허브
type Broadcaster interface {
	Broadcast(sessionID string, message realtime.Message)
	ClientCount(sessionID string) int
	CloseSession(sessionID string)
}

// CredentialForgetter - 세션 종료 시 세션 키 정리 (credential.Gate)
type CredentialForgetter interface {
	Forget(ctx context.Context, sessionID string) error
}

// 서버 메트릭
type ServerMetrics struct {
	TotalSessions  int       `json:"totalSessions"`
	ActiveSessions int       `json:"activeSessions"`
	StartTime      time.Time `json:"startTime"`
	mutex          sync.RWMutex
}

// Manager - 세션 생성/조회/삭제와 정리 루틴
type Manager struct {
	sessions map[string]*Controller
	mutex    sync.RWMutex
	metrics  *ServerMetrics

	deps              Options
	hub               Broadcaster
	inactiveThreshold time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager - 매니저 생성
// deps: 모든 컨트롤러가 공유하는 협력 객체 (OnChange는 매니저가 채움)
func NewManager(deps Options, hub Broadcaster, inactiveThreshold time.Duration) *Manager {
	if inactiveThreshold <= 0 {
		inactiveThreshold = defaultInactiveThreshold
	}
	return &Manager{
		sessions:          make(map[string]*Controller),
		metrics:           &ServerMetrics{StartTime: time.Now()},
		deps:              deps,
		hub:               hub,
		inactiveThreshold: inactiveThreshold,
		stop:              make(chan struct{}),
	}
}

// Create - 새 세션 생성 후 Start
func (m *Manager) Create() *Controller {
	id := uuid.New().String()

	opts := m.deps
	opts.OnChange = func(snap Snapshot) {
		if m.hub != nil {
			m.hub.Broadcast(snap.SessionID, realtime.Message{
				Type:      realtime.TypeState,
				SessionID: snap.SessionID,
				Payload:   snap,
			})
		}
	}
	ctrl := NewController(id, opts)

	m.mutex.Lock()
	m.sessions[id] = ctrl
	count := len(m.sessions)
	m.mutex.Unlock()

	m.metrics.mutex.Lock()
	m.metrics.TotalSessions++
	m.metrics.ActiveSessions = count
	total := m.metrics.TotalSessions
	m.metrics.mutex.Unlock()
	recordActiveSessions(count)

	log.Printf("✅ Created new session: %s (Total: %d, Active: %d)", id, total, count)

	ctrl.Start()
	return ctrl
}

// Get - 세션 조회
func (m *Manager) Get(id string) (*Controller, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ctrl, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

// Exists - 세션 존재 여부
func (m *Manager) Exists(id string) bool {
	_, err := m.Get(id)
	return err == nil
}

// State - 허브 StateProvider용 스냅샷 조회
func (m *Manager) State(id string) (interface{}, bool) {
	ctrl, err := m.Get(id)
	if err != nil {
		return nil, false
	}
	return ctrl.Snapshot(), true
}

// CheckCredential - 해당 세션의 키 확인 재실행 (없는 세션이면 무시)
func (m *Manager) CheckCredential(id string) {
	if ctrl, err := m.Get(id); err == nil {
		ctrl.CheckCredential()
	}
}

// Delete - 세션 종료 및 제거
func (m *Manager) Delete(id string) error {
	m.mutex.Lock()
	ctrl, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	m.mutex.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	m.teardown(ctrl, count)
	log.Printf("🗑️  Deleted session: %s (Active: %d)", id, count)
	return nil
}

func (m *Manager) teardown(ctrl *Controller, remaining int) {
	ctrl.Close()
	if m.hub != nil {
		m.hub.CloseSession(ctrl.ID())
	}
	if forgetter, ok := m.deps.Gate.(CredentialForgetter); ok {
		ctx, cancel := context.WithTimeout(context.Background(), forgetTimeout)
		if err := forgetter.Forget(ctx, ctrl.ID()); err != nil {
			log.Printf("⚠️  Failed to clear credential for session %s: %v", ctrl.ID(), err)
		}
		cancel()
	}

	m.metrics.mutex.Lock()
	m.metrics.ActiveSessions = remaining
	m.metrics.mutex.Unlock()
	recordActiveSessions(remaining)
}

// Len - 활성 세션 수
func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// cleanupInactiveSessions - 연결된 클라이언트 없이 오래 방치된 세션 정리
func (m *Manager) cleanupInactiveSessions() int {
	now := time.Now()
	return m.sweep("inactive", func(ctrl *Controller) bool {
		_, lastActivity := ctrl.Activity()
		if now.Sub(lastActivity) <= m.inactiveThreshold || ctrl.Busy() {
			return false
		}
		return m.hub == nil || m.hub.ClientCount(ctrl.ID()) == 0
	})
}

// cleanupExpiredSessions - 만료된 세션 정리 (24시간 후)
func (m *Manager) cleanupExpiredSessions() int {
	now := time.Now()
	return m.sweep("expired", func(ctrl *Controller) bool {
		createdAt, _ := ctrl.Activity()
		return now.Sub(createdAt) > expiredThreshold
	})
}

func (m *Manager) sweep(reason string, shouldRemove func(*Controller) bool) int {
	m.mutex.Lock()
	var swept []*Controller
	for id, ctrl := range m.sessions {
		if shouldRemove(ctrl) {
			delete(m.sessions, id)
			swept = append(swept, ctrl)
		}
	}
	remaining := len(m.sessions)
	m.mutex.Unlock()

	for _, ctrl := range swept {
		createdAt, lastActivity := ctrl.Activity()
		m.teardown(ctrl, remaining)
		log.Printf("⏰ Cleaned up %s session: %s (Age: %v, Inactive: %v)",
			reason, ctrl.ID(), time.Since(createdAt), time.Since(lastActivity))
	}

	if len(swept) > 0 {
		log.Printf("🧼 Cleaned up %d %s sessions (Active: %d)", len(swept), reason, remaining)
	}
	return len(swept)
}

// ForceCleanup - 관리자용 즉시 정리
func (m *Manager) ForceCleanup() int {
	return m.cleanupInactiveSessions() + m.cleanupExpiredSessions()
}

// StartCleanupRoutine - 정기적 정리 작업 시작
func (m *Manager) StartCleanupRoutine() {
	// 5분마다 방치된 세션 정리
	go func() {
		ticker := time.NewTicker(inactiveSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.cleanupInactiveSessions()
			case <-m.stop:
				return
			}
		}
	}()

	// 30분마다 만료된 세션 정리
	go func() {
		ticker := time.NewTicker(expiredSweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.cleanupExpiredSessions()
			case <-m.stop:
				return
			}
		}
	}()

	log.Printf("🔄 Started session cleanup routines (Inactive: 5min, Expired: 30min)")
}

// Shutdown - 정리 루틴 중지 후 모든 세션 종료
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mutex.Lock()
	all := make([]*Controller, 0, len(m.sessions))
	for id, ctrl := range m.sessions {
		all = append(all, ctrl)
		delete(m.sessions, id)
	}
	m.mutex.Unlock()

	for _, ctrl := range all {
		m.teardown(ctrl, 0)
	}
	log.Printf("🛑 Session manager stopped (%d sessions closed)", len(all))
}

// Metrics - /metrics 응답 본문
func (m *Manager) Metrics() map[string]interface{} {
	m.metrics.mutex.RLock()
	startTime := m.metrics.StartTime
	totalSessions := m.metrics.TotalSessions
	activeSessions := m.metrics.ActiveSessions
	m.metrics.mutex.RUnlock()

	m.mutex.RLock()
	sessionDetails := make([]map[string]interface{}, 0, len(m.sessions))
	totalClients := 0
	for id, ctrl := range m.sessions {
		createdAt, lastActivity := ctrl.Activity()
		clientCount := 0
		if m.hub != nil {
			clientCount = m.hub.ClientCount(id)
		}
		totalClients += clientCount

		sessionDetails = append(sessionDetails, map[string]interface{}{
			"sessionId":    id,
			"phase":        ctrl.Snapshot().State.Phase,
			"clientCount":  clientCount,
			"createdAt":    createdAt,
			"lastActivity": lastActivity,
			"age":          time.Since(createdAt).String(),
			"inactive":     time.Since(lastActivity).String(),
		})
	}
	m.mutex.RUnlock()

	return map[string]interface{}{
		"server": map[string]interface{}{
			"uptime":         time.Since(startTime).String(),
			"startTime":      startTime,
			"totalSessions":  totalSessions,
			"activeSessions": activeSessions,
			"currentClients": totalClients,
		},
		"sessions": sessionDetails,
	}
}
