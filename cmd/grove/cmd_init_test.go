package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grove-vcs/grove/pkg/repo"
)

func TestInitCmd_CreatesRepository(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "project")

	output := runCommand(t, parent, newInitCmd, target)
	if !strings.Contains(output, "initialized empty grove repository in") {
		t.Errorf("init output missing confirmation:\n%s", output)
	}

	if _, err := os.Stat(filepath.Join(target, ".grove", "HEAD")); err != nil {
		t.Fatalf("HEAD not created: %v", err)
	}
	if _, err := repo.Open(target); err != nil {
		t.Fatalf("Open after init: %v", err)
	}
}

func TestInitCmd_Twice_Error(t *testing.T) {
	dir := t.TempDir()

	runCommand(t, dir, newInitCmd)
	err := runCommandErr(t, dir, newInitCmd)
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error for repeated init: %v", err)
	}
}
