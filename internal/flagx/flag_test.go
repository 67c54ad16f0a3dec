package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		values []string
		bools  []string
		want   []string
	}{
		{
			name:   "value flag with separate value",
			args:   []string{"-u", "https://x.supabase.co", "-k", "anon"},
			values: []string{"-u"},
			want:   []string{"-u", "https://x.supabase.co"},
		},
		{
			name:   "value flag with equals",
			args:   []string{"-u=https://x", "-k", "anon"},
			values: []string{"-u"},
			want:   []string{"-u=https://x"},
		},
		{
			name:   "double dash is accepted for a single dash flag",
			args:   []string{"--config=alt.yaml", "-x", "1"},
			values: []string{"-c", "-config"},
			want:   []string{"--config=alt.yaml"},
		},
		{
			name:   "unknown flags and positionals ignored",
			args:   []string{"-x", "1", "--y=2", "positional"},
			values: []string{"-c"},
			want:   []string{},
		},
		{
			name:   "flag followed by another flag keeps no value",
			args:   []string{"-c", "-offline"},
			values: []string{"-c"},
			bools:  []string{"-offline"},
			want:   []string{"-c", "-offline"},
		},
		{
			name:   "bool flag does not swallow the next argument",
			args:   []string{"-offline", "repl", "-u", "http://h"},
			values: []string{"-u"},
			bools:  []string{"-offline"},
			want:   []string{"-offline", "-u", "http://h"},
		},
		{
			name:   "bool flag with explicit value",
			args:   []string{"-offline=false"},
			bools:  []string{"-offline"},
			want:   []string{"-offline=false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.values, tt.bools...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlagFrom([]string{"-c", "a.json", "-u", "x"}))
	assert.Equal(t, "b.toml", ConfigFileFlagFrom([]string{"-config=b.toml"}))
	assert.Equal(t, "", ConfigFileFlagFrom([]string{"-u", "x"}))
}
