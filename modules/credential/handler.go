package credential

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct {
	gate   *Gate
	exists func(sessionID string) bool
}

// NewHandler - 키 선택 핸들러 생성
// exists: 세션 존재 여부 확인 (없는 세션이면 404)
func NewHandler(gate *Gate, exists func(sessionID string) bool) *Handler {
	return &Handler{gate: gate, exists: exists}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sessions/{id}/credential", h.HandleSave).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/credential/cancel", h.HandleCancel).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/credential", h.HandleClear).Methods("DELETE")
}

type saveRequest struct {
	APIKey string `json:"apiKey"`
}

// HandleSave - 키 저장 + 선택 완료
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.APIKey == "" {
		writeError(w, http.StatusBadRequest, "apiKey is required")
		return
	}

	if err := h.gate.SaveAndComplete(r.Context(), sessionID, req.APIKey); err != nil {
		log.Printf("❌ [Credential] Failed to save key for session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to save credential")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleCancel - 저장 없이 선택 완료
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	h.gate.Complete(sessionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleClear - 세션 키 삭제
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.gate.Clear(r.Context(), sessionID); err != nil {
		log.Printf("❌ [Credential] Failed to clear key for session %s: %v", sessionID, err)
		writeError(w, http.StatusInternalServerError, "Failed to clear credential")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := mux.Vars(r)["id"]
	if h.exists != nil && !h.exists(sessionID) {
		writeError(w, http.StatusNotFound, "Session not found")
		return "", false
	}
	return sessionID, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
