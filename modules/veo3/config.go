package veo3

import (
	"time"

	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/model"
)

// Config - Veo 서비스 설정
type Config struct {
	FastModel         string
	QualityModel      string
	PollInterval      time.Duration
	GenerationTimeout time.Duration
}

// NewConfig - 공통 설정에서 Veo 설정 추출
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		FastModel:         cfg.VeoFastModel,
		QualityModel:      cfg.VeoModel,
		PollInterval:      cfg.VeoPollInterval,
		GenerationTimeout: cfg.VeoGenerationTimeout,
	}
}

// ModelName - 모델 variant를 실제 모델명으로 매핑
func (c *Config) ModelName(m model.VeoModel) string {
	switch m {
	case model.ModelVeo:
		return c.QualityModel
	default:
		return c.FastModel
	}
}
