package main

import (
	"testing"

	"github.com/upskilleo/learning-engine/internal/grading"
	"github.com/upskilleo/learning-engine/internal/platform/config"
)

func TestNewGrader(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.GradingConfig
		wantType string
	}{
		{
			name:     "firstline mode",
			cfg:      config.GradingConfig{Mode: "firstline"},
			wantType: "grading.FirstLineGrader",
		},
		{
			name:     "fuzzy mode",
			cfg:      config.GradingConfig{Mode: "fuzzy", MaxDistance: 3},
			wantType: "grading.FuzzyGrader",
		},
		{
			name:     "unknown mode falls back to firstline",
			cfg:      config.GradingConfig{Mode: ""},
			wantType: "grading.FirstLineGrader",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrader(tt.cfg)
			switch tt.wantType {
			case "grading.FirstLineGrader":
				if _, ok := g.(grading.FirstLineGrader); !ok {
					t.Errorf("grader type = %T, want FirstLineGrader", g)
				}
			case "grading.FuzzyGrader":
				if _, ok := g.(grading.FuzzyGrader); !ok {
					t.Errorf("grader type = %T, want FuzzyGrader", g)
				}
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("UPSKILLEO_CORS_ORIGINS", "https://app.upskilleo.com,https://staging.upskilleo.com")
	got := allowedOrigins()
	if len(got) != 2 {
		t.Fatalf("origins = %v, want 2 entries", got)
	}
	if got[0] != "https://app.upskilleo.com" {
		t.Errorf("first origin = %q", got[0])
	}

	t.Setenv("UPSKILLEO_CORS_ORIGINS", "")
	if allowedOrigins() != nil {
		t.Error("expected nil origins when unset")
	}
}
