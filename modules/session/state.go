package session

import (
	"veo-studio-server/modules/common/model"
)

// Phase - 생성 요청 lifecycle 단계
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInProgress Phase = "in_progress"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// 사용자에게 보이는 고정 메시지
const (
	MessageCredentialInvalid = "API key not found or invalid. Please select a valid API key."
	MessageUnexpected        = "An unexpected error occurred."
	MessageDialogFailed      = "Could not open API key selection dialog."
	MessageMissingResult     = "The generation finished without a playable video."
)

// State - 세션 상태 (불변 값, 전이 함수가 새 값을 반환)
//
// Result는 PhaseSucceeded 일 때만, ErrorMessage는 PhaseFailed 일 때만 존재한다.
// LastRequest는 현재 Result/ErrorMessage를 만든 요청이다.
type State struct {
	Phase           Phase                    `json:"phase"`
	LastRequest     *model.GenerationRequest `json:"lastRequest,omitempty"`
	Result          *model.GenerationResult  `json:"result,omitempty"`
	ErrorMessage    string                   `json:"errorMessage,omitempty"`
	NeedsCredential bool                     `json:"needsCredential"`
	Submission      uint64                   `json:"submission"`
}

// NewState - 초기 상태 (Idle, 요청/결과 없음)
func NewState() State {
	return State{Phase: PhaseIdle}
}

// BeginSubmit - 제출 시작: 결과/에러를 먼저 비우고 InProgress로
func (s State) BeginSubmit(req *model.GenerationRequest) State {
	s.Phase = PhaseInProgress
	s.LastRequest = req
	s.Result = nil
	s.ErrorMessage = ""
	s.Submission++
	return s
}

// Succeed - 성공 결과 저장
func (s State) Succeed(result *model.GenerationResult) State {
	if result == nil {
		result = &model.GenerationResult{}
	}
	s.Phase = PhaseSucceeded
	s.Result = result
	s.ErrorMessage = ""
	return s
}

// Fail - 실패 메시지 저장 (비어 있으면 기본 메시지)
func (s State) Fail(message string) State {
	if message == "" {
		message = MessageUnexpected
	}
	s.Phase = PhaseFailed
	s.Result = nil
	s.ErrorMessage = message
	return s
}

// Reset - 새 비디오: 이전 맥락 전부 폐기
func (s State) Reset() State {
	s.Phase = PhaseIdle
	s.LastRequest = nil
	s.Result = nil
	s.ErrorMessage = ""
	return s
}

// CanExtend - 확장 가능한 결과인지
func (s State) CanExtend() bool {
	return s.Phase == PhaseSucceeded && s.Result != nil && s.LastRequest != nil
}

// Extend - 직전 요청과 결과에서 확장 요청을 만들어 Idle로 (자동 제출 없음)
func (s State) Extend() (State, bool) {
	if !s.CanExtend() {
		return s, false
	}
	s.LastRequest = DeriveExtendRequest(s.LastRequest, s.Result.Video)
	s.Phase = PhaseIdle
	s.Result = nil
	s.ErrorMessage = ""
	return s, true
}

// WithCredential - 키 확인 결과 반영 (phase 무관)
func (s State) WithCredential(present bool) State {
	s.NeedsCredential = !present
	return s
}

// CredentialDialogFailed - 키 선택 UI를 열지 못함
func (s State) CredentialDialogFailed() State {
	return s.Fail(MessageDialogFailed)
}

// DeriveExtendRequest - 확장 요청 생성
// 비율/모델/루프 여부는 유지, 해상도는 확장 가능 해상도로 고정, 나머지 입력은 비움
func DeriveExtendRequest(last *model.GenerationRequest, video model.VideoHandle) *model.GenerationRequest {
	next := last.Clone()
	next.Mode = model.ModeExtendVideo
	next.Prompt = ""
	next.StartFrame = nil
	next.EndFrame = nil
	next.ReferenceImages = []model.ImageFile{}
	next.StyleImage = nil
	next.InputVideo = nil
	next.InputVideoObject = &video
	next.Resolution = model.ExtensionResolution
	return next
}

func playableURL(s State) string {
	if s.Result == nil {
		return ""
	}
	return s.Result.PlayableURL
}
