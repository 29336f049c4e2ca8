package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "origin", baseURL: "https://flags.example.com", want: "https://flags.example.com/api/evaluate"},
		{name: "trailing slash", baseURL: "https://flags.example.com/", want: "https://flags.example.com/api/evaluate"},
		{name: "with port", baseURL: "http://localhost:18000", want: "http://localhost:18000/api/evaluate"},
		{name: "with base path", baseURL: "https://example.com/flags", want: "https://example.com/flags/api/evaluate"},
		{name: "drops query", baseURL: "https://example.com/?x=1", want: "https://example.com/api/evaluate"},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "no scheme", baseURL: "flags.example.com", wantErr: true},
		{name: "unsupported scheme", baseURL: "ftp://flags.example.com", wantErr: true},
		{name: "no host", baseURL: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateURL(tt.baseURL)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{BaseURL: "https://flags.example.com", TeamID: "team", Timeout: time.Second}
	assert.NoError(t, valid.Validate())

	noTeam := valid
	noTeam.TeamID = ""
	assert.Error(t, noTeam.Validate())

	noTimeout := valid
	noTimeout.Timeout = 0
	assert.Error(t, noTimeout.Validate())

	badURL := valid
	badURL.BaseURL = "::::"
	assert.Error(t, badURL.Validate())

	badBreaker := valid
	badBreaker.Breaker = BreakerConfig{Threshold: 2}
	assert.Error(t, badBreaker.Validate())
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	m.SetValue("on", true)

	outcome := m.EvaluateFlag(context.Background(), "on")
	assert.True(t, outcome.Succeeded)
	assert.True(t, outcome.Value)

	outcome = m.EvaluateFlag(context.Background(), "missing")
	assert.False(t, outcome.Succeeded)

	assert.Equal(t, 1, m.Calls("on"))
	assert.Equal(t, 2, m.TotalCalls())
}
