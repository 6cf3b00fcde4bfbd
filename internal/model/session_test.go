package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		exp     int64
		expired bool
	}{
		{"future", now.Add(time.Minute).UnixMilli(), false},
		{"past", now.Add(-time.Minute).UnixMilli(), true},
		{"exactly now", now.UnixMilli(), true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Session{Exp: tt.exp}
			assert.Equal(t, tt.expired, s.IsExpired(now))
		})
	}
}

func TestSession_Refresh(t *testing.T) {
	s := &Session{Exp: 1}
	s.Refresh(15 * time.Minute)

	want := time.Now().Add(15 * time.Minute).UnixMilli()
	assert.InDelta(t, want, s.Exp, 1_000)
	assert.False(t, s.IsExpired(time.Now()))
}

func TestSession_GrantRole(t *testing.T) {
	tests := []struct {
		role string
		want Session
	}{
		{"viewer", Session{Viewer: true}},
		{"short_url", Session{Viewer: true, ShortURL: true}},
		{"vanity_url", Session{Viewer: true, VanityURL: true}},
		{"administrator", Session{Viewer: true, ShortURL: true, VanityURL: true, Administrator: true}},
		{"unknown_role", Session{}},
		{"", Session{}},
	}

	for _, tt := range tests {
		t.Run("role "+tt.role, func(t *testing.T) {
			var s Session
			s.GrantRole(tt.role)
			assert.Equal(t, tt.want, s)
		})
	}

	t.Run("roles accumulate", func(t *testing.T) {
		var s Session
		s.GrantRole("short_url")
		s.GrantRole("vanity_url")
		assert.True(t, s.Viewer)
		assert.True(t, s.ShortURL)
		assert.True(t, s.VanityURL)
		assert.False(t, s.Administrator)
	})

	t.Run("case and whitespace are normalized", func(t *testing.T) {
		var s Session
		s.GrantRole("  Administrator ")
		assert.True(t, s.Administrator)
	})
}
