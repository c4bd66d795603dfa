package session

import (
	"veo-studio-server/modules/common/model"
)

// ViewKind - 표시할 화면
type ViewKind string

const (
	ViewCredentialDialog ViewKind = "credential_dialog"
	ViewLoading          ViewKind = "loading"
	ViewResult           ViewKind = "result"
	ViewError            ViewKind = "error"
	ViewInput            ViewKind = "input"
)

// ErrorReason - 에러 화면이 된 이유
type ErrorReason string

const (
	ReasonMissingResult    ErrorReason = "missing_result"
	ReasonGenerationFailed ErrorReason = "generation_failed"
)

// Action - 화면에서 호출 가능한 동작
type Action string

const (
	ActionContinueCredential Action = "continue_credential"
	ActionRetry              Action = "retry"
	ActionNewVideo           Action = "new_video"
	ActionExtend             Action = "extend"
	ActionSubmit             Action = "submit"
	ActionSample             Action = "sample"
)

// View - 상태에서 계산된 화면 정보
type View struct {
	Kind          ViewKind                 `json:"kind"`
	Actions       []Action                 `json:"actions"`
	VideoURL      string                   `json:"videoUrl,omitempty"`
	CanExtend     bool                     `json:"canExtend,omitempty"`
	ErrorReason   ErrorReason              `json:"errorReason,omitempty"`
	ErrorMessage  string                   `json:"errorMessage,omitempty"`
	InitialValues *model.GenerationRequest `json:"initialValues,omitempty"`
}

// SelectView - 상태 → 화면 선택 (순수 함수)
func SelectView(state State, sampleLoaded bool) View {
	if state.NeedsCredential {
		return View{Kind: ViewCredentialDialog, Actions: []Action{ActionContinueCredential}}
	}

	switch state.Phase {
	case PhaseInProgress:
		return View{Kind: ViewLoading, Actions: []Action{}}

	case PhaseSucceeded:
		if url := playableURL(state); url != "" {
			canExtend := state.LastRequest != nil && state.LastRequest.Resolution == model.ExtensionResolution
			actions := []Action{ActionRetry, ActionNewVideo}
			if canExtend {
				actions = append(actions, ActionExtend)
			}
			return View{Kind: ViewResult, Actions: actions, VideoURL: url, CanExtend: canExtend}
		}
		return View{
			Kind:         ViewError,
			Actions:      []Action{ActionNewVideo},
			ErrorReason:  ReasonMissingResult,
			ErrorMessage: MessageMissingResult,
		}

	case PhaseFailed:
		return View{
			Kind:         ViewError,
			Actions:      []Action{ActionNewVideo},
			ErrorReason:  ReasonGenerationFailed,
			ErrorMessage: state.ErrorMessage,
		}
	}

	actions := []Action{ActionSubmit}
	if sampleLoaded {
		actions = append(actions, ActionSample)
	}
	return View{Kind: ViewInput, Actions: actions, InitialValues: state.LastRequest}
}
