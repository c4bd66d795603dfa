package veo3

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"veo-studio-server/modules/common/model"
)

var testConfig = &Config{FastModel: "fast-model", QualityModel: "quality-model"}

func image(name string) *model.ImageFile {
	return &model.ImageFile{Name: name, MIMEType: "image/png", Base64: base64.StdEncoding.EncodeToString([]byte(name))}
}

func TestBuildVideosRequest_TextToVideo(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeTextToVideo, Prompt: "cat", Model: model.ModelVeoFast,
		AspectRatio: model.AspectPortrait, Resolution: model.Resolution1080p,
	}

	out, err := BuildVideosRequest(req, genai.BackendGeminiAPI, testConfig)
	require.NoError(t, err)

	assert.Equal(t, "fast-model", out.Model)
	assert.Equal(t, "cat", out.Source.Prompt)
	assert.EqualValues(t, 1, out.Config.NumberOfVideos)
	assert.Equal(t, "9:16", out.Config.AspectRatio)
	assert.Empty(t, out.Config.Resolution)
	assert.Equal(t, map[string]any{"resolution": "1080p"}, out.Parameters)
	require.NotNil(t, out.Config.HTTPOptions)
}

func TestBuildVideosRequest_FramesLoopingUsesStartAsLastFrame(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeFramesToVideo, Model: model.ModelVeoFast,
		AspectRatio: model.AspectLandscape, Resolution: model.Resolution720p,
		StartFrame: image("start"), EndFrame: image("end"), IsLooping: true,
	}

	gem, err := BuildVideosRequest(req, genai.BackendGeminiAPI, testConfig)
	require.NoError(t, err)
	require.NotNil(t, gem.Source.Image)
	assert.Equal(t, []byte("start"), gem.Source.Image.ImageBytes)
	assert.Nil(t, gem.Config.LastFrame)
	assert.Equal(t, []byte("start"), gem.Instance["lastFrame"].(map[string]any)["bytesBase64Encoded"])

	vtx, err := BuildVideosRequest(req, genai.BackendVertexAI, testConfig)
	require.NoError(t, err)
	require.NotNil(t, vtx.Config.LastFrame)
	assert.Equal(t, []byte("start"), vtx.Config.LastFrame.ImageBytes)
	assert.Equal(t, "720p", vtx.Config.Resolution)
	assert.Empty(t, vtx.Instance)
	assert.Nil(t, vtx.Config.HTTPOptions)
}

func TestBuildVideosRequest_FramesWithEndFrame(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeFramesToVideo, Model: model.ModelVeoFast,
		AspectRatio: model.AspectLandscape, Resolution: model.Resolution720p,
		StartFrame: image("start"), EndFrame: image("end"),
	}

	out, err := BuildVideosRequest(req, genai.BackendVertexAI, testConfig)
	require.NoError(t, err)
	assert.Equal(t, []byte("end"), out.Config.LastFrame.ImageBytes)
}

func TestBuildVideosRequest_ReferencesForcesQualityModel(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeReferencesToVideo, Prompt: "dance", Model: model.ModelVeoFast,
		AspectRatio: model.AspectPortrait, Resolution: model.Resolution1080p,
		ReferenceImages: []model.ImageFile{*image("a"), *image("b")},
		StyleImage:      image("style"),
	}

	out, err := BuildVideosRequest(req, genai.BackendGeminiAPI, testConfig)
	require.NoError(t, err)

	assert.Equal(t, "quality-model", out.Model)
	assert.Equal(t, "16:9", out.Config.AspectRatio)
	assert.Equal(t, "720p", out.Parameters["resolution"])

	refs := out.Instance["referenceImages"].([]map[string]any)
	require.Len(t, refs, 3)
	assert.Equal(t, "asset", refs[0]["referenceType"])
	assert.Equal(t, "asset", refs[1]["referenceType"])
	assert.Equal(t, "style", refs[2]["referenceType"])
}

func TestBuildVideosRequest_ExtendVideo(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeExtendVideo, Model: model.ModelVeoFast,
		AspectRatio: model.AspectPortrait, Resolution: model.Resolution1080p,
		InputVideoObject: &model.VideoHandle{URI: "https://files/v1", MIMEType: "video/mp4"},
	}

	gem, err := BuildVideosRequest(req, genai.BackendGeminiAPI, testConfig)
	require.NoError(t, err)
	assert.Equal(t, "quality-model", gem.Model)
	assert.Nil(t, gem.Source.Video)
	assert.Equal(t, map[string]any{"uri": "https://files/v1"}, gem.Instance["video"])
	assert.Empty(t, gem.Config.AspectRatio)
	assert.Equal(t, "720p", gem.Parameters["resolution"])

	vtx, err := BuildVideosRequest(req, genai.BackendVertexAI, testConfig)
	require.NoError(t, err)
	require.NotNil(t, vtx.Source.Video)
	assert.Equal(t, "https://files/v1", vtx.Source.Video.URI)
	assert.Equal(t, "720p", vtx.Config.Resolution)
}

func TestBuildVideosRequest_DataURLFrame(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeFramesToVideo, Model: model.ModelVeoFast,
		AspectRatio: model.AspectLandscape, Resolution: model.Resolution720p,
		StartFrame: &model.ImageFile{
			Name:   "start.jpg",
			Base64: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("start")),
		},
	}

	out, err := BuildVideosRequest(req, genai.BackendGeminiAPI, testConfig)
	require.NoError(t, err)
	require.NotNil(t, out.Source.Image)
	assert.Equal(t, []byte("start"), out.Source.Image.ImageBytes)
	assert.Equal(t, "image/jpeg", out.Source.Image.MIMEType)
}

func TestBuildVideosRequest_BadImage(t *testing.T) {
	req := &model.GenerationRequest{
		Mode: model.ModeFramesToVideo, Model: model.ModelVeoFast,
		AspectRatio: model.AspectLandscape, Resolution: model.Resolution720p,
		StartFrame: &model.ImageFile{Name: "broken", Base64: "@@@"},
	}
	_, err := BuildVideosRequest(req, genai.BackendGeminiAPI, testConfig)
	assert.Error(t, err)
}

func TestInjectExtras(t *testing.T) {
	provider := injectExtras(
		map[string]any{"video": map[string]any{"uri": "u"}},
		map[string]any{"resolution": "720p"},
	)

	t.Run("existing instance", func(t *testing.T) {
		body := map[string]any{
			"instances":  []map[string]any{{"prompt": "cat"}},
			"parameters": map[string]any{"sampleCount": 1},
		}
		out := provider(body)
		first := out["instances"].([]map[string]any)[0]
		assert.Equal(t, "cat", first["prompt"])
		assert.Equal(t, map[string]any{"uri": "u"}, first["video"])
		assert.Equal(t, map[string]any{"sampleCount": 1, "resolution": "720p"}, out["parameters"])
	})

	t.Run("no instances yet", func(t *testing.T) {
		out := provider(map[string]any{})
		first := out["instances"].([]map[string]any)[0]
		assert.Equal(t, map[string]any{"uri": "u"}, first["video"])
		assert.Equal(t, map[string]any{"resolution": "720p"}, out["parameters"])
	})

	t.Run("generic slice", func(t *testing.T) {
		out := provider(map[string]any{"instances": []any{map[string]any{"prompt": "dog"}}})
		first := out["instances"].([]any)[0].(map[string]any)
		assert.Equal(t, "dog", first["prompt"])
		assert.Contains(t, first, "video")
	})
}
