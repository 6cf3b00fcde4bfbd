package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateRedirectRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRedirectRequest
		wantErr bool
	}{
		{
			name:    "valid vanity",
			req:     CreateRedirectRequest{Type: RedirectVanity, Slug: "docs", Target: "https://example.com/docs"},
			wantErr: false,
		},
		{
			name:    "valid random",
			req:     CreateRedirectRequest{Type: RedirectRandom, Target: "https://example.com"},
			wantErr: false,
		},
		{
			name:    "valid with max age",
			req:     CreateRedirectRequest{Type: RedirectRandom, Target: "https://example.com", MaxAge: 60_000},
			wantErr: false,
		},
		{
			name:    "missing type",
			req:     CreateRedirectRequest{Target: "https://example.com"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			req:     CreateRedirectRequest{Type: "permanent", Target: "https://example.com"},
			wantErr: true,
		},
		{
			name:    "vanity without slug",
			req:     CreateRedirectRequest{Type: RedirectVanity, Target: "https://example.com"},
			wantErr: true,
		},
		{
			name:    "random with slug",
			req:     CreateRedirectRequest{Type: RedirectRandom, Slug: "docs", Target: "https://example.com"},
			wantErr: true,
		},
		{
			name:    "missing target",
			req:     CreateRedirectRequest{Type: RedirectRandom},
			wantErr: true,
		},
		{
			name:    "relative target",
			req:     CreateRedirectRequest{Type: RedirectRandom, Target: "/local/path"},
			wantErr: true,
		},
		{
			name:    "target without host",
			req:     CreateRedirectRequest{Type: RedirectRandom, Target: "mailto:user@example.com"},
			wantErr: true,
		},
		{
			name:    "negative max age",
			req:     CreateRedirectRequest{Type: RedirectRandom, Target: "https://example.com", MaxAge: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
