package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Faultbox/facegen/internal/pipeline"
)

// TestStoreIntegration runs against a real PostgreSQL instance named by
// AVATARGEN_TEST_DATABASE_URL.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	url := os.Getenv("AVATARGEN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("AVATARGEN_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := New(ctx, url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)

	id := "test-" + time.Now().Format("20060102150405.000000000")
	created := time.Now().UTC().Truncate(time.Microsecond)
	meta := pipeline.Metadata{
		ID:               id,
		VertexCount:      468,
		FaceCount:        812,
		GenerationTimeMs: 12.5,
		ModelVersion:     pipeline.DefaultModelVersion,
		FaceShape:        "oval",
		Style:            "casual",
		TextureEmbedded:  false,
		GLBSize:          4096,
		Warnings:         []string{"texture dropped"},
		CreatedAt:        created,
	}

	if err := s.SaveAvatar(ctx, meta, "avatars/a.glb"); err != nil {
		t.Fatalf("SaveAvatar failed: %v", err)
	}
	defer s.DeleteAvatar(ctx, id)

	got, err := s.GetAvatar(ctx, id)
	if err != nil {
		t.Fatalf("GetAvatar failed: %v", err)
	}
	if got.Path != "avatars/a.glb" || got.FaceCount != 812 || got.Style != "casual" {
		t.Errorf("GetAvatar = %+v", got)
	}
	if len(got.Warnings) != 1 || got.Warnings[0] != "texture dropped" {
		t.Errorf("Warnings = %v", got.Warnings)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}

	// Saving again replaces the row.
	meta.GLBSize = 8192
	if err := s.SaveAvatar(ctx, meta, "avatars/b.glb"); err != nil {
		t.Fatalf("second SaveAvatar failed: %v", err)
	}
	got, err = s.GetAvatar(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.GLBSize != 8192 || got.Path != "avatars/b.glb" {
		t.Errorf("upsert not applied: %+v", got)
	}

	list, err := s.ListAvatars(ctx, 0)
	if err != nil {
		t.Fatalf("ListAvatars failed: %v", err)
	}
	found := false
	for _, r := range list {
		if r.ID == id {
			found = true
		}
	}
	if !found {
		t.Errorf("ListAvatars did not include %s", id)
	}

	if err := s.DeleteAvatar(ctx, id); err != nil {
		t.Fatalf("DeleteAvatar failed: %v", err)
	}
	if _, err := s.GetAvatar(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAvatar after delete error = %v, want ErrNotFound", err)
	}
}

func TestNewBadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := New(ctx, "postgres://%zz", nil); err == nil {
		t.Error("expected error for malformed connection string")
	}
}
