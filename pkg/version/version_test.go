package version

import (
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Commit != Commit {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected %s, got %s", runtime.Version(), info.GoVersion)
	}
}

func TestString(t *testing.T) {
	if got := String(); got != "dev (commit: unknown, built: unknown)" {
		t.Errorf("unexpected version string: %q", got)
	}
}
