package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"miche-video-server/internal/model"
)

func TestSession_Active(t *testing.T) {
	now := time.Now().UTC()
	revokedAt := now.Add(-time.Minute)

	tests := []struct {
		name    string
		session model.Session
		active  bool
	}{
		{"живая сессия", model.Session{ExpireAt: now.Add(time.Hour)}, true},
		{"отозванная сессия", model.Session{ExpireAt: now.Add(time.Hour), RevokedAt: &revokedAt}, false},
		{"просроченная сессия", model.Session{ExpireAt: now.Add(-time.Second)}, false},
		// срок истекает ровно в ExpireAt, не после
		{"истекает в момент ExpireAt", model.Session{ExpireAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.session.Active(now))
		})
	}
}
