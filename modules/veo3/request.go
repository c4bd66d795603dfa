package veo3

import (
	"fmt"

	"google.golang.org/genai"

	"veo-studio-server/modules/common/model"
)

// 참조 이미지 타입
const (
	referenceTypeAsset = "asset"
	referenceTypeStyle = "style"
)

// BuildVideosRequest - 생성 요청을 백엔드별 Veo 호출로 변환
func BuildVideosRequest(req *model.GenerationRequest, backend genai.Backend, cfg *Config) (*VideosRequest, error) {
	vertex := backend == genai.BackendVertexAI

	out := &VideosRequest{
		Model:      cfg.ModelName(req.Model),
		Source:     &genai.GenerateVideosSource{Prompt: req.Prompt},
		Config:     &genai.GenerateVideosConfig{NumberOfVideos: 1},
		Instance:   map[string]any{},
		Parameters: map[string]any{},
	}
	resolution := req.Resolution

	switch req.Mode {
	case model.ModeTextToVideo:

	case model.ModeFramesToVideo:
		if req.StartFrame == nil {
			return nil, fmt.Errorf("start frame is required for %s", req.Mode)
		}
		start, err := toImage(req.StartFrame)
		if err != nil {
			return nil, err
		}
		out.Source.Image = start

		// 루프: 마지막 프레임 = 시작 프레임
		var last *genai.Image
		if req.IsLooping {
			last = start
		} else if req.EndFrame != nil {
			if last, err = toImage(req.EndFrame); err != nil {
				return nil, err
			}
		}
		if last != nil {
			if vertex {
				out.Config.LastFrame = last
			} else {
				out.Instance["lastFrame"] = imagePayload(last)
			}
		}

	case model.ModeReferencesToVideo:
		refs := make([]map[string]any, 0, len(req.ReferenceImages)+1)
		for i := range req.ReferenceImages {
			img, err := toImage(&req.ReferenceImages[i])
			if err != nil {
				return nil, err
			}
			refs = append(refs, referencePayload(img, referenceTypeAsset))
		}
		if req.StyleImage != nil {
			img, err := toImage(req.StyleImage)
			if err != nil {
				return nil, err
			}
			refs = append(refs, referencePayload(img, referenceTypeStyle))
		}
		if len(refs) == 0 {
			return nil, fmt.Errorf("reference images are required for %s", req.Mode)
		}
		out.Instance["referenceImages"] = refs

		// 참조 이미지는 고품질 모델 + 720p + 16:9 만 지원
		out.Model = cfg.QualityModel
		resolution = model.Resolution720p
		out.Config.AspectRatio = string(model.AspectLandscape)

	case model.ModeExtendVideo:
		if req.InputVideoObject == nil || req.InputVideoObject.URI == "" {
			return nil, fmt.Errorf("input video is required for %s", req.Mode)
		}
		video := &genai.Video{URI: req.InputVideoObject.URI, MIMEType: req.InputVideoObject.MIMEType}
		if vertex {
			out.Source.Video = video
		} else {
			out.Instance["video"] = map[string]any{"uri": video.URI}
		}
		out.Model = cfg.QualityModel
		resolution = model.ExtensionResolution

	default:
		return nil, fmt.Errorf("unknown mode %q", req.Mode)
	}

	// 확장 요청은 원본 비율을 따르므로 비율을 보내지 않음
	if req.Mode != model.ModeExtendVideo && out.Config.AspectRatio == "" {
		out.Config.AspectRatio = string(req.AspectRatio)
	}
	if vertex {
		out.Config.Resolution = string(resolution)
	} else {
		out.Parameters["resolution"] = string(resolution)
	}

	if len(out.Instance) > 0 || len(out.Parameters) > 0 {
		out.Config.HTTPOptions = &genai.HTTPOptions{
			ExtrasRequestProvider: injectExtras(out.Instance, out.Parameters),
		}
	}
	return out, nil
}

func toImage(f *model.ImageFile) (*genai.Image, error) {
	mimeType, data, err := f.Decode()
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &genai.Image{ImageBytes: data, MIMEType: mimeType}, nil
}

func imagePayload(img *genai.Image) map[string]any {
	return map[string]any{
		"bytesBase64Encoded": img.ImageBytes,
		"mimeType":           img.MIMEType,
	}
}

func referencePayload(img *genai.Image, referenceType string) map[string]any {
	return map[string]any{
		"image":         imagePayload(img),
		"referenceType": referenceType,
	}
}

// injectExtras - 직렬화 직전 요청 body의 instances[0] / parameters에 필드 추가
func injectExtras(instance, parameters map[string]any) genai.ExtrasRequestProvider {
	return func(body map[string]any) map[string]any {
		if len(instance) > 0 {
			first := firstInstance(body)
			for k, v := range instance {
				first[k] = v
			}
		}
		if len(parameters) > 0 {
			params, ok := body["parameters"].(map[string]any)
			if !ok {
				params = map[string]any{}
				body["parameters"] = params
			}
			for k, v := range parameters {
				params[k] = v
			}
		}
		return body
	}
}

func firstInstance(body map[string]any) map[string]any {
	switch instances := body["instances"].(type) {
	case []map[string]any:
		if len(instances) > 0 {
			return instances[0]
		}
	case []any:
		if len(instances) > 0 {
			if first, ok := instances[0].(map[string]any); ok {
				return first
			}
		}
	}
	first := map[string]any{}
	body["instances"] = []map[string]any{first}
	return first
}
