package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/model"
)

func TestNewClient_DisabledWithoutSupabase(t *testing.T) {
	assert.Nil(t, NewClient(&config.Config{}))
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	ctx := context.Background()

	id, err := c.RecordGeneration(ctx, "s1", &model.GenerationRequest{Mode: model.ModeTextToVideo}, "veo")
	assert.NoError(t, err)
	assert.Empty(t, id)

	assert.NoError(t, c.CompleteGeneration(ctx, "gen-1", "https://example.com/v.mp4"))
	assert.NoError(t, c.FailGeneration(ctx, "gen-1", "boom"))

	rows, err := c.FetchSessionGenerations(ctx, "s1")
	assert.NoError(t, err)
	assert.Empty(t, rows)
}
