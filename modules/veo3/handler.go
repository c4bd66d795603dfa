package veo3

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type Handler struct {
	cache *VideoCache
}

// NewHandler - 캐시 비디오 핸들러
func NewHandler(cache *VideoCache) *Handler {
	return &Handler{cache: cache}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(VideoPathPrefix+"{id}", h.ServeVideo).Methods("GET")
}

// ServeVideo - GET /videos/{id}
func (h *Handler) ServeVideo(w http.ResponseWriter, r *http.Request) {
	data, mimeType, ok := h.cache.Get(mux.Vars(r)["id"])
	if !ok {
		http.Error(w, "Video not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
