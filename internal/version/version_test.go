package version

import (
	"fmt"
	"testing"
)

func TestDefaultsWithoutLdflags(t *testing.T) {
	// Без -ldflags сборка помечается как dev со значениями-заглушками.
	if v := GetVersion(); v != "dev" {
		t.Errorf("expected default version dev, got %q", v)
	}
	if c := GetCommit(); c != "unknown" {
		t.Errorf("expected default commit unknown, got %q", c)
	}
	if d := GetDate(); d != "unknown" {
		t.Errorf("expected default date unknown, got %q", d)
	}
}

func TestInfoMatchesAccessors(t *testing.T) {
	v, c, d := Info()
	if v != GetVersion() || c != GetCommit() || d != GetDate() {
		t.Errorf("Info (%s, %s, %s) diverges from accessors (%s, %s, %s)",
			v, c, d, GetVersion(), GetCommit(), GetDate())
	}
}

func TestStringFormat(t *testing.T) {
	want := fmt.Sprintf("version=%s commit=%s date=%s", GetVersion(), GetCommit(), GetDate())
	if got := String(); got != want {
		t.Errorf("unexpected String output: got %q, want %q", got, want)
	}
}
