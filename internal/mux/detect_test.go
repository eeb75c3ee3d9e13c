package mux

import "testing"

func TestDetect_InsideTmux(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,123,0")
	t.Setenv("ZELLIJ", "")

	m, err := Detect()
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if m.Name() != "tmux" {
		t.Errorf("Name = %q, want tmux", m.Name())
	}
}

func TestDetect_Zellij(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("ZELLIJ", "0")

	if _, err := Detect(); err == nil {
		t.Error("expected an error for unsupported multiplexer")
	}
}

func TestFromName(t *testing.T) {
	m, err := FromName("tmux")
	if err != nil || m == nil {
		t.Fatalf("FromName(tmux) = %v, %v", m, err)
	}
	if _, err := FromName("zellij"); err == nil {
		t.Error("expected error for zellij")
	}
	if _, err := FromName("screen"); err == nil {
		t.Error("expected error for unknown name")
	}
}
