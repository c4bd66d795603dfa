package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"veo-studio-server/modules/common/config"
	"veo-studio-server/modules/common/model"
)

const generationsTable = "veo_generations"

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성 (Supabase 미설정이면 nil)
func NewClient(cfg *config.Config) *Client {
	if !cfg.SupabaseEnabled() {
		log.Println("⚠️  [Database] Supabase not configured, generation history disabled")
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// RecordGeneration - 생성 시작 기록 (pending), generation_id 반환
func (c *Client) RecordGeneration(ctx context.Context, sessionID string, req *model.GenerationRequest, modelName string) (string, error) {
	if c == nil {
		return "", nil
	}

	row := model.Generation{
		GenerationID: uuid.NewString(),
		SessionID:    sessionID,
		Mode:         string(req.Mode),
		Model:        modelName,
		Prompt:       req.Prompt,
		Resolution:   string(req.Resolution),
		AspectRatio:  string(req.AspectRatio),
		Status:       model.StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	log.Printf("📝 [Database] Recording generation %s (session: %s, mode: %s)", row.GenerationID, sessionID, row.Mode)

	_, _, err := c.supabase.From(generationsTable).
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to insert generation: %w", err)
	}
	return row.GenerationID, nil
}

// CompleteGeneration - 생성 완료 처리
func (c *Client) CompleteGeneration(ctx context.Context, generationID, videoURL string) error {
	if c == nil || generationID == "" {
		return nil
	}
	return c.updateGeneration(generationID, map[string]interface{}{
		"status":       model.StatusCompleted,
		"video_url":    videoURL,
		"completed_at": "now()",
	})
}

// FailGeneration - 생성 실패 처리
func (c *Client) FailGeneration(ctx context.Context, generationID, message string) error {
	if c == nil || generationID == "" {
		return nil
	}
	return c.updateGeneration(generationID, map[string]interface{}{
		"status":        model.StatusFailed,
		"error_message": message,
		"completed_at":  "now()",
	})
}

// FetchSessionGenerations - 세션의 생성 기록 조회 (최신순)
func (c *Client) FetchSessionGenerations(ctx context.Context, sessionID string) ([]model.Generation, error) {
	if c == nil {
		return nil, nil
	}

	var rows []model.Generation
	data, _, err := c.supabase.From(generationsTable).
		Select("*", "exact", false).
		Eq("session_id", sessionID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", generationsTable, err)
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}

func (c *Client) updateGeneration(generationID string, updateData map[string]interface{}) error {
	_, _, err := c.supabase.From(generationsTable).
		Update(updateData, "", "").
		Eq("generation_id", generationID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update generation %s: %w", generationID, err)
	}

	log.Printf("✅ [Database] Generation %s updated to: %v", generationID, updateData["status"])
	return nil
}
