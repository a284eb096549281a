package storagefactory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"reelforge/internal/config"
	"reelforge/internal/pkg/apperr"
	"reelforge/internal/pkg/storage"
)

func localTestConfig(t *testing.T) *config.StorageConfig {
	return &config.StorageConfig{
		Type: "local",
		Local: &config.LocalConfig{
			BasePath:      t.TempDir(),
			BaseURL:       "http://localhost:8080/storage",
			PresignExpiry: 3600,
		},
	}
}

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr bool
	}{
		{
			name:    "valid local storage config",
			cfg:     localTestConfig(t),
			wantErr: false,
		},
		{
			name: "missing local config",
			cfg: &config.StorageConfig{
				Type:  "local",
				Local: nil,
			},
			wantErr: true,
		},
		{
			name: "missing oss config",
			cfg: &config.StorageConfig{
				Type: "oss",
				OSS:  nil,
			},
			wantErr: true,
		},
		{
			name: "unsupported storage type",
			cfg: &config.StorageConfig{
				Type: "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, err := NewStorage(ctx, tt.cfg)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got storage %v", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s == nil {
				t.Fatal("expected storage instance")
			}
		})
	}
}

func TestLocalStorage_URLRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(ctx, localTestConfig(t))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	key := "projects/p1/step3/scene_1.png"
	url, err := s.Upload(ctx, key, strings.NewReader("fake image bytes"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// 公开 URL 必须能还原出存储路径
	got, err := s.KeyFromURL(url)
	if err != nil {
		t.Fatalf("key from url: %v", err)
	}
	if got != key {
		t.Fatalf("key mismatch: got %q want %q", got, key)
	}

	// 相对路径形态同样可解析
	got, err = s.KeyFromURL("/storage/" + key)
	if err != nil || got != key {
		t.Fatalf("relative form: got %q err %v", got, err)
	}

	// 陌生 URL 必须显式报错，不允许静默 no-op
	_, err = s.KeyFromURL("https://elsewhere.example.com/foo.png")
	var unsupported *apperr.UnsupportedURLFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedURLFormat, got %v", err)
	}
}

func TestLocalStorage_DeleteByURL(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(ctx, localTestConfig(t))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	key := "projects/p1/step2/voiceover.mp3"
	url, err := s.Upload(ctx, key, strings.NewReader("audio"), "audio/mpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := storage.DeleteByURL(ctx, s, url); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.Download(ctx, key); err == nil {
		t.Fatal("expected object to be gone")
	}

	// 重复删除（对象已不存在）不是错误
	if err := storage.DeleteByURL(ctx, s, url); err != nil {
		t.Fatalf("delete of missing object should succeed, got %v", err)
	}
}

func TestLocalStorage_DownloadContent(t *testing.T) {
	ctx := context.Background()
	s, err := NewStorage(ctx, localTestConfig(t))
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	const body = "final render bytes"
	if _, err := s.Upload(ctx, "projects/p1/step5/final.mp4", strings.NewReader(body), "video/mp4"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	rc, err := s.Download(ctx, "projects/p1/step5/final.mp4")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != body {
		t.Fatalf("content mismatch: %q", data)
	}
}
