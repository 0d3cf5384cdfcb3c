package preflight_test

import (
	"context"
	"path/filepath"
	"testing"

	"storyreel/internal/preflight"
	"storyreel/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("expected writable temp dir to pass: %#v", result)
	}

	result = preflight.CheckDirectoryAccess("Staging directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatalf("expected missing dir to fail: %#v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckFreeSpace("Free space", dir, 1)
	if !result.Passed {
		t.Fatalf("expected 1 byte requirement to pass: %#v", result)
	}

	result = preflight.CheckFreeSpace("Free space", dir, 1<<62)
	if result.Passed {
		t.Fatalf("expected absurd requirement to fail: %#v", result)
	}
}

func TestRunAllWithStubbedBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected preflight results")
	}
	if !preflight.AllPassed(results) {
		for _, result := range results {
			if !result.Passed {
				t.Errorf("check %q failed: %s", result.Name, result.Detail)
			}
		}
		t.Fatal("expected all checks to pass")
	}
}

func TestRunAllReportsMissingCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	cfg.LLM.APIKey = ""

	results := preflight.RunAll(context.Background(), cfg)
	if preflight.AllPassed(results) {
		t.Fatal("expected missing llm key to fail preflight")
	}
}
