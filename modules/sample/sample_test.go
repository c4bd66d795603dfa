package sample

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veo-studio-server/modules/common/model"
)

func TestLoad_DecodesEmbeddedImageOnce(t *testing.T) {
	loader := NewLoader()

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 96, first.Width)
	assert.Equal(t, 54, first.Height)
	assert.Equal(t, "image/png", first.File.MIMEType)
	assert.Equal(t, nightStreetPNG, first.File.Base64)
}

func TestLoad_DecodeFailure(t *testing.T) {
	loader := &Loader{encoded: "not-base64!!"}

	asset, err := loader.Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, asset)

	_, ok := loader.Preview(context.Background())
	assert.False(t, ok)
}

func TestLoad_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader().Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest(t *testing.T) {
	asset, err := NewLoader().Load(context.Background())
	require.NoError(t, err)

	req := Request(asset)
	require.NoError(t, req.Validate())
	assert.Equal(t, model.ModeFramesToVideo, req.Mode)
	assert.Equal(t, Prompt, req.Prompt)
	assert.Equal(t, model.ModelVeoFast, req.Model)
	assert.Equal(t, model.AspectLandscape, req.AspectRatio)
	assert.Equal(t, model.Resolution720p, req.Resolution)
	assert.True(t, req.IsLooping)
	assert.Nil(t, req.EndFrame)
	require.NotNil(t, req.StartFrame)
	assert.Equal(t, asset.File, *req.StartFrame)
}

func TestRelease_DropsPreview(t *testing.T) {
	loader := NewLoader()
	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	loader.Release()
	loader.Release()

	_, ok := loader.Preview(context.Background())
	assert.False(t, ok)
}

func TestHandleSample(t *testing.T) {
	router := mux.NewRouter()
	NewHandler(NewLoader()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sample", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Request model.GenerationRequest `json:"request"`
		Width   int                     `json:"width"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Prompt, body.Request.Prompt)
	assert.Equal(t, 96, body.Width)
}

func TestHandlePreview_Unavailable(t *testing.T) {
	router := mux.NewRouter()
	NewHandler(&Loader{encoded: "%%"}).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sample/preview", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
