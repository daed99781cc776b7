package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "server.json", "-a", ":50051"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-c", "server.json"},
		},
		{
			name:    "equals form",
			args:    []string{"-config=server.json", "-a", ":50051"},
			allowed: []string{"-c", "-config"},
			want:    []string{"-config=server.json"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "-y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag without value at end",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not a value",
			args:    []string{"-c", "-d", "postgres://"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-v", "10m", "-c", "conf.json", "-w", "2m"},
			allowed: []string{"-v", "-w"},
			want:    []string{"-v", "10m", "-w", "2m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestJsonConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", jsonConfigPath([]string{"-a", ":1", "-c", "a.json"}))
	assert.Equal(t, "b.json", jsonConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", jsonConfigPath([]string{"-d", "dsn"}))
}
