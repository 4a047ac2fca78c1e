package main

import "testing"

func TestResetCommandAlias(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"reconfigure"})
	if err != nil {
		t.Fatalf("Find(reconfigure): %v", err)
	}
	if cmd != resetCmd {
		t.Errorf("reconfigure resolved to %q, want the reset command", cmd.Name())
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", "(not set)"},
		{"ghp_x", "********"},
		{"ghp_abcdef1234567890", "ghp_abcd..."},
	}
	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
