package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestUnknownVerbFailsWithUsage(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"frobnicate"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unknown verb")
	}
	if !strings.Contains(out.String(), "Usage:") && !strings.Contains(out.String(), "unknown command") {
		t.Errorf("expected usage output, got: %q", out.String())
	}
}

func TestAllVerbsRegistered(t *testing.T) {
	root := NewRootCmd()

	verbs := []string{"start", "stop", "restart", "status", "logs", "connect", "reset", "setup", "run", "token", "version"}
	registered := map[string]bool{}
	for _, c := range root.Commands() {
		registered[c.Name()] = true
	}
	for _, verb := range verbs {
		if !registered[verb] {
			t.Errorf("verb %q not registered", verb)
		}
	}
}

func TestResetHasForceFlag(t *testing.T) {
	root := NewRootCmd()
	for _, c := range root.Commands() {
		if c.Name() == "reset" {
			if c.Flags().Lookup("force") == nil {
				t.Error("reset is missing the --force flag")
			}
			return
		}
	}
	t.Fatal("reset command not found")
}

func TestConfirmDestroyForce(t *testing.T) {
	ok, err := confirmDestroy(true)
	if err != nil {
		t.Fatalf("confirm with force: %v", err)
	}
	if !ok {
		t.Error("force must bypass the prompt")
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "tweetstack") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}
