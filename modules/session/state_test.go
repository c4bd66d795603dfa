package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veo-studio-server/modules/common/model"
)

func textRequest(prompt string) *model.GenerationRequest {
	return &model.GenerationRequest{
		Mode:        model.ModeTextToVideo,
		Prompt:      prompt,
		Model:       model.ModelVeoFast,
		AspectRatio: model.AspectLandscape,
		Resolution:  model.Resolution720p,
	}
}

func succeededState(req *model.GenerationRequest, url string) State {
	return NewState().BeginSubmit(req).Succeed(&model.GenerationResult{
		Video:       model.VideoHandle{URI: "files/video-1", MIMEType: "video/mp4"},
		PlayableURL: url,
	})
}

func TestBeginSubmit_ClearsPreviousOutcome(t *testing.T) {
	failed := NewState().BeginSubmit(textRequest("one")).Fail("boom")
	require.Equal(t, PhaseFailed, failed.Phase)

	req := textRequest("two")
	next := failed.BeginSubmit(req)

	assert.Equal(t, PhaseInProgress, next.Phase)
	assert.Same(t, req, next.LastRequest)
	assert.Nil(t, next.Result)
	assert.Empty(t, next.ErrorMessage)
	assert.Equal(t, failed.Submission+1, next.Submission)
}

func TestSucceed(t *testing.T) {
	s := succeededState(textRequest("cat"), "/videos/abc")

	assert.Equal(t, PhaseSucceeded, s.Phase)
	require.NotNil(t, s.Result)
	assert.Equal(t, "/videos/abc", s.Result.PlayableURL)
	assert.Empty(t, s.ErrorMessage)
}

func TestSucceed_NilResultStillHoldsResult(t *testing.T) {
	s := NewState().BeginSubmit(textRequest("cat")).Succeed(nil)

	assert.Equal(t, PhaseSucceeded, s.Phase)
	require.NotNil(t, s.Result)
	assert.Empty(t, s.Result.PlayableURL)
}

func TestFail(t *testing.T) {
	s := NewState().BeginSubmit(textRequest("cat")).Fail("quota exceeded")
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, "quota exceeded", s.ErrorMessage)
	assert.Nil(t, s.Result)

	empty := NewState().BeginSubmit(textRequest("cat")).Fail("")
	assert.Equal(t, MessageUnexpected, empty.ErrorMessage)
}

func TestReset(t *testing.T) {
	s := succeededState(textRequest("cat"), "/videos/abc").WithCredential(false).Reset()

	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.LastRequest)
	assert.Nil(t, s.Result)
	assert.Empty(t, s.ErrorMessage)
	assert.True(t, s.NeedsCredential)
}

func TestState_Extend(t *testing.T) {
	last := &model.GenerationRequest{
		Mode:        model.ModeFramesToVideo,
		Prompt:      "a car at night",
		Model:       model.ModelVeo,
		AspectRatio: model.AspectPortrait,
		Resolution:  model.Resolution720p,
		StartFrame:  &model.ImageFile{Name: "start.png", MIMEType: "image/png", Base64: "AAAA"},
		EndFrame:    &model.ImageFile{Name: "end.png", MIMEType: "image/png", Base64: "BBBB"},
		IsLooping:   true,
	}
	s := succeededState(last, "/videos/abc")

	next, ok := s.Extend()
	require.True(t, ok)

	assert.Equal(t, PhaseIdle, next.Phase)
	assert.Nil(t, next.Result)
	req := next.LastRequest
	require.NotNil(t, req)
	assert.Equal(t, model.ModeExtendVideo, req.Mode)
	assert.Empty(t, req.Prompt)
	assert.Nil(t, req.StartFrame)
	assert.Nil(t, req.EndFrame)
	assert.NotNil(t, req.ReferenceImages)
	assert.Empty(t, req.ReferenceImages)
	assert.Nil(t, req.StyleImage)
	assert.Nil(t, req.InputVideo)
	require.NotNil(t, req.InputVideoObject)
	assert.Equal(t, "files/video-1", req.InputVideoObject.URI)
	assert.Equal(t, model.Resolution720p, req.Resolution)
	assert.Equal(t, model.AspectPortrait, req.AspectRatio)
	assert.Equal(t, model.ModelVeo, req.Model)
	assert.True(t, req.IsLooping)

	// 원래 요청은 그대로
	assert.Equal(t, model.ModeFramesToVideo, last.Mode)
	assert.NotNil(t, last.StartFrame)
}

func TestExtend_NotFromOtherPhases(t *testing.T) {
	idle := NewState()
	_, ok := idle.Extend()
	assert.False(t, ok)

	inProgress := idle.BeginSubmit(textRequest("cat"))
	_, ok = inProgress.Extend()
	assert.False(t, ok)

	failed := inProgress.Fail("boom")
	_, ok = failed.Extend()
	assert.False(t, ok)
}

func TestDeriveExtendRequest_ForcesExtensionResolution(t *testing.T) {
	last := textRequest("cat")
	last.Resolution = model.Resolution1080p

	req := DeriveExtendRequest(last, model.VideoHandle{URI: "files/v"})
	assert.Equal(t, model.ExtensionResolution, req.Resolution)
	assert.Equal(t, model.Resolution1080p, last.Resolution)
}

func TestWithCredential_KeepsPhase(t *testing.T) {
	s := NewState().BeginSubmit(textRequest("cat"))

	missing := s.WithCredential(false)
	assert.True(t, missing.NeedsCredential)
	assert.Equal(t, PhaseInProgress, missing.Phase)

	present := missing.WithCredential(true)
	assert.False(t, present.NeedsCredential)
	assert.Equal(t, PhaseInProgress, present.Phase)
}

func TestCredentialDialogFailed(t *testing.T) {
	s := NewState().CredentialDialogFailed()
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.Equal(t, MessageDialogFailed, s.ErrorMessage)
}
