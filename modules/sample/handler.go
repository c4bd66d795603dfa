package sample

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	loader *Loader
}

// NewHandler - 샘플 핸들러 생성
func NewHandler(loader *Loader) *Handler {
	return &Handler{loader: loader}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sample", h.HandleSample).Methods("GET")
	router.HandleFunc("/api/sample/preview", h.HandlePreview).Methods("GET")
}

// HandleSample - 샘플 요청 파라미터 반환
func (h *Handler) HandleSample(w http.ResponseWriter, r *http.Request) {
	asset, err := h.loader.Load(r.Context())
	if err != nil {
		http.Error(w, "sample unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"request": Request(asset),
		"width":   asset.Width,
		"height":  asset.Height,
	})
}

// HandlePreview - WebP 미리보기
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	preview, ok := h.loader.Preview(r.Context())
	if !ok {
		http.Error(w, "preview unavailable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(preview)
}
