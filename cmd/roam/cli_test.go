package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{
		"--db", filepath.Join(dir, "device.db"),
		"--log", filepath.Join(dir, "roam.log"),
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDeviceAccountFlow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_CONFIG", filepath.Join(dir, "missing.yaml"))

	if _, err := execute(t, dir, "quota"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected errNotSignedIn, got %v", err)
	}

	out, err := execute(t, dir, "login", "--name", "Riley", "--email", "riley@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as Riley") {
		t.Fatalf("unexpected login output: %q", out)
	}

	out, err = execute(t, dir, "quota")
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if !strings.Contains(out, "5/5 likes left") {
		t.Fatalf("unexpected quota output: %q", out)
	}

	out, err = execute(t, dir, "matches")
	if err != nil {
		t.Fatalf("matches: %v", err)
	}
	if !strings.Contains(out, "No matches yet") {
		t.Fatalf("unexpected matches output: %q", out)
	}

	if _, err := execute(t, dir, "upgrade", "diamond"); err == nil {
		t.Fatalf("expected error for unknown plan")
	}
	out, err = execute(t, dir, "upgrade", "Gold")
	if err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if !strings.Contains(out, "Roam Gold") {
		t.Fatalf("unexpected upgrade output: %q", out)
	}

	out, err = execute(t, dir, "quota")
	if err != nil {
		t.Fatalf("quota after upgrade: %v", err)
	}
	if !strings.Contains(out, "Unlimited likes") {
		t.Fatalf("unexpected quota output: %q", out)
	}

	if _, err := execute(t, dir, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := execute(t, dir, "matches"); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("expected errNotSignedIn after logout, got %v", err)
	}
}
