package session

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"veo-studio-server/modules/common/model"
)

type Handler struct {
	manager *Manager
}

// NewHandler - 세션 핸들러 생성
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/sessions", h.HandleCreate).Methods("POST")
	router.HandleFunc("/api/sessions/{id}", h.HandleGet).Methods("GET")
	router.HandleFunc("/api/sessions/{id}", h.HandleDelete).Methods("DELETE")
	router.HandleFunc("/api/sessions/{id}/generate", h.HandleGenerate).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/retry", h.action((*Controller).Retry)).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/new", h.action((*Controller).NewVideo)).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/extend", h.action((*Controller).Extend)).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/sample", h.action((*Controller).SubmitSample)).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/credential/continue", h.action((*Controller).ContinueFromCredentialDialog)).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/credential/check", h.action(func(c *Controller) error {
		c.CheckCredential()
		return nil
	})).Methods("POST")
}

// HandleCreate - POST /api/sessions
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctrl := h.manager.Create()
	writeJSON(w, http.StatusCreated, ctrl.Snapshot())
}

// HandleGet - GET /api/sessions/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// HandleDelete - DELETE /api/sessions/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// HandleGenerate - POST /api/sessions/{id}/generate
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	var req model.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if err := ctrl.Submit(&req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ctrl.Snapshot())
}

// action - 본문 없는 세션 동작을 핸들러로 감싸기
func (h *Handler) action(op func(*Controller) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl, ok := h.controller(w, r)
		if !ok {
			return
		}
		if err := op(ctrl); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ctrl.Snapshot())
	}
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*Controller, bool) {
	ctrl, err := h.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return ctrl, true
}

// statusFor - 에러 → HTTP 상태 코드
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionClosed):
		return http.StatusNotFound
	case errors.Is(err, ErrGenerationInFlight),
		errors.Is(err, ErrCannotExtend),
		errors.Is(err, ErrSampleUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ [Session] Unexpected handler error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
