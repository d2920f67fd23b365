package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewGuard(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		root    string
		wantErr bool
	}{
		{name: "existing directory", root: tmpDir},
		{name: "missing directory is created", root: filepath.Join(tmpDir, "new", "workspace")},
		{name: "empty directory", root: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard, err := NewGuard(tt.root)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewGuard() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if info, statErr := os.Stat(guard.Root()); statErr != nil || !info.IsDir() {
				t.Errorf("root %q was not created: %v", guard.Root(), statErr)
			}
		})
	}
}

func TestSessionDir(t *testing.T) {
	guard, err := NewGuard(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "plain id", id: "localUser"},
		{name: "nested id", id: "team/alice"},
		{name: "empty id", id: "", wantErr: true},
		{name: "blank id", id: "  ", wantErr: true},
		{name: "parent traversal", id: "../outside", wantErr: true},
		{name: "hidden traversal", id: "a/../../outside", wantErr: true},
		{name: "root itself", id: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, err := guard.SessionDir(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SessionDir(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if want := filepath.Join(guard.Root(), tt.id); dir != want {
				t.Errorf("SessionDir(%q) = %q, want %q", tt.id, dir, want)
			}
			if _, statErr := os.Stat(dir); statErr != nil {
				t.Errorf("session dir not created: %v", statErr)
			}
		})
	}
}

func TestSessionDirRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	guard, err := NewGuard(root)
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}
	if _, err := guard.SessionDir("link/user"); err == nil {
		t.Error("SessionDir() followed a symlink out of the workspace")
	}
}

func TestIsWithinWorkspace(t *testing.T) {
	guard, err := NewGuard(t.TempDir())
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{path: guard.Root(), want: true},
		{path: filepath.Join(guard.Root(), "a", "b.txt"), want: true},
		{path: guard.Root() + "-sibling", want: false},
		{path: filepath.Dir(guard.Root()), want: false},
	}
	for _, tt := range tests {
		if got := guard.IsWithinWorkspace(tt.path); got != tt.want {
			t.Errorf("IsWithinWorkspace(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
