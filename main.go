package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/database"
	"veo-studio-server/modules/common/gemini"
	"veo-studio-server/modules/common/model"
	"veo-studio-server/modules/common/redis"
	"veo-studio-server/modules/common/storage"
	"veo-studio-server/modules/credential"
	"veo-studio-server/modules/realtime"
	"veo-studio-server/modules/sample"
	"veo-studio-server/modules/session"
	"veo-studio-server/modules/veo3"
)

const shutdownTimeout = 15 * time.Second

var (
	sessionManager *session.Manager
	hub            *realtime.Hub
	history        *database.Client
	videoCache     *veo3.VideoCache
)

// CORS 헤더 추가
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 헬스 체크 엔드포인트
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "veo-studio",
	})
}

// 서버 메트릭 조회 엔드포인트
func getMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := sessionManager.Metrics()
	if server, ok := metrics["server"].(map[string]interface{}); ok {
		server["totalConnections"] = hub.TotalConnections()
		server["cachedVideos"] = videoCache.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}

// 세션 생성 기록 조회 (Supabase 미설정이면 빈 목록)
func getSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	rows, err := history.FetchSessionGenerations(r.Context(), sessionID)
	if err != nil {
		log.Printf("❌ Failed to fetch history for session %s: %v", sessionID, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "Failed to fetch history"})
		return
	}
	if rows == nil {
		rows = []model.Generation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessionId":   sessionID,
		"generations": rows,
	})
}

// 모든 세션 강제 정리 (관리자용)
func forceCleanupSessions(w http.ResponseWriter, r *http.Request) {
	cleaned := sessionManager.ForceCleanup()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "Cleanup completed",
		"cleaned": cleaned,
	})
}

func main() {
	// 환경변수 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	// WebSocket 허브
	hub = realtime.NewHub()

	// 키 저장소: Redis 우선, 없으면 메모리
	var store credential.Store = credential.NewMemoryStore()
	rdb, err := redis.Connect(context.Background(), cfg)
	if err != nil {
		log.Printf("⚠️  %v, falling back to in-memory credential store", err)
	} else if rdb != nil {
		store = credential.NewRedisStore(rdb)
		defer rdb.Close()
	}

	// Vertex 백엔드는 서비스 계정으로 인증하므로 키 선택이 필요 없음
	selectionEnabled := cfg.CredentialSelectionEnabled && cfg.GeminiBackend == config.BackendGemini
	gate := credential.NewGate(store, hub, cfg.GeminiAPIKey, selectionEnabled)

	// 생성 결과 게시: Supabase Storage, 없으면 메모리 캐시
	videoCache = veo3.NewVideoCache()
	var uploader veo3.Uploader
	if storageClient := storage.NewClient(cfg); storageClient != nil {
		uploader = storageClient
	}
	var recorder veo3.HistoryRecorder
	history = database.NewClient(cfg)
	if history != nil {
		recorder = history
	}

	generator := veo3.NewService(veo3.NewConfig(cfg), gemini.NewClientFactory(cfg), gate, uploader, videoCache, recorder)

	samples := sample.NewLoader()

	sessionManager = session.NewManager(session.Options{
		Generator: generator,
		Gate:      gate,
		Releaser:  videoCache,
		Samples:   samples,
	}, hub, cfg.SessionInactiveTimeout)
	hub.SetStateProvider(sessionManager.State)
	gate.SetListener(sessionManager.CheckCredential)

	// 정리 루틴 시작
	sessionManager.StartCleanupRoutine()

	// 샘플은 미리 디코딩 (실패해도 서버는 동작)
	go samples.Load(context.Background())

	// 라우터 설정
	r := mux.NewRouter()

	// CORS 미들웨어 적용
	r.Use(enableCORS)

	// 라우트 설정
	r.HandleFunc("/", healthCheck).Methods("GET")
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ws", hub.HandleWebSocket)
	r.HandleFunc("/metrics", getMetrics).Methods("GET")
	r.Handle("/metrics/prometheus", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/admin/cleanup", forceCleanupSessions).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/history", getSessionHistory).Methods("GET")

	session.NewHandler(sessionManager).RegisterRoutes(r)
	credential.NewHandler(gate, sessionManager.Exists).RegisterRoutes(r)
	sample.NewHandler(samples).RegisterRoutes(r)
	veo3.NewHandler(videoCache).RegisterRoutes(r)

	port := cfg.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Veo Studio Server starting on port %s", port)
	log.Printf("📡 WebSocket endpoint: ws://localhost:%s/ws?session={id}", port)
	log.Printf("❤️  Health check: http://localhost:%s/health", port)
	log.Printf("📊 Metrics: http://localhost:%s/metrics (prometheus: /metrics/prometheus)", port)
	log.Printf("🧹 Admin cleanup: http://localhost:%s/admin/cleanup", port)

	// 서버 시작
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 종료 시그널 대기
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("🛑 Received %s, shutting down (%d active sessions)...", sig, sessionManager.Len())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  HTTP server shutdown: %v", err)
	}

	sessionManager.Shutdown()
	hub.Shutdown()
	samples.Release()
	log.Println("👋 Server stopped")
}
