package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veo-studio-server/modules/common/model"
)

func TestSelectView_CredentialDialogWins(t *testing.T) {
	s := succeededState(textRequest("cat"), "/videos/abc").WithCredential(false)

	v := SelectView(s, true)
	assert.Equal(t, ViewCredentialDialog, v.Kind)
	assert.Equal(t, []Action{ActionContinueCredential}, v.Actions)
}

func TestSelectView_Loading(t *testing.T) {
	v := SelectView(NewState().BeginSubmit(textRequest("cat")), true)
	assert.Equal(t, ViewLoading, v.Kind)
	assert.Empty(t, v.Actions)
}

func TestSelectView_Result(t *testing.T) {
	v := SelectView(succeededState(textRequest("cat"), "/videos/abc"), false)

	assert.Equal(t, ViewResult, v.Kind)
	assert.Equal(t, "/videos/abc", v.VideoURL)
	assert.True(t, v.CanExtend)
	assert.Equal(t, []Action{ActionRetry, ActionNewVideo, ActionExtend}, v.Actions)
}

func TestSelectView_ResultNotExtendableAt1080p(t *testing.T) {
	req := textRequest("cat")
	req.Resolution = model.Resolution1080p

	v := SelectView(succeededState(req, "/videos/abc"), false)
	assert.Equal(t, ViewResult, v.Kind)
	assert.False(t, v.CanExtend)
	assert.Equal(t, []Action{ActionRetry, ActionNewVideo}, v.Actions)
}

func TestSelectView_SucceededWithoutURL(t *testing.T) {
	v := SelectView(succeededState(textRequest("cat"), ""), false)

	assert.Equal(t, ViewError, v.Kind)
	assert.Equal(t, ReasonMissingResult, v.ErrorReason)
	assert.Equal(t, MessageMissingResult, v.ErrorMessage)
	assert.Equal(t, []Action{ActionNewVideo}, v.Actions)
}

func TestSelectView_Failed(t *testing.T) {
	v := SelectView(NewState().BeginSubmit(textRequest("cat")).Fail("quota exceeded"), true)

	assert.Equal(t, ViewError, v.Kind)
	assert.Equal(t, ReasonGenerationFailed, v.ErrorReason)
	assert.Equal(t, "quota exceeded", v.ErrorMessage)
	assert.Equal(t, []Action{ActionNewVideo}, v.Actions)
}

func TestSelectView_Input(t *testing.T) {
	v := SelectView(NewState(), false)
	assert.Equal(t, ViewInput, v.Kind)
	assert.Nil(t, v.InitialValues)
	assert.Equal(t, []Action{ActionSubmit}, v.Actions)

	withSample := SelectView(NewState(), true)
	assert.Equal(t, []Action{ActionSubmit, ActionSample}, withSample.Actions)
}

func TestSelectView_InputAfterExtendCarriesInitialValues(t *testing.T) {
	extended, ok := succeededState(textRequest("cat"), "/videos/abc").Extend()
	assert.True(t, ok)

	v := SelectView(extended, false)
	assert.Equal(t, ViewInput, v.Kind)
	if assert.NotNil(t, v.InitialValues) {
		assert.Equal(t, model.ModeExtendVideo, v.InitialValues.Mode)
	}
}
