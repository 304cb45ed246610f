package shell

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// fakeGit records every invocation and can be told to fail.
type fakeGit struct {
	calls   [][]string
	dirs    []string
	failOn  string
	failErr error
}

func (f *fakeGit) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	f.dirs = append(f.dirs, dir)
	if f.failOn != "" && len(args) > 1 && args[1] == f.failOn {
		return []byte("boom"), f.failErr
	}
	return nil, nil
}

func TestCreateWorktree(t *testing.T) {
	git := &fakeGit{}
	wm := NewWorktreeManager(git, nil)

	path := filepath.Join(t.TempDir(), "wt-feature")
	res := wm.CreateWorktree(context.Background(), "/repo", "feature/login", path)
	if !res.Success {
		t.Fatalf("CreateWorktree failed: %s", res.Error)
	}
	if len(git.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(git.calls))
	}
	want := []string{"worktree", "add", "-b", "feature/login", path}
	if got := strings.Join(git.calls[0], " "); got != strings.Join(want, " ") {
		t.Errorf("args = %q, want %q", got, strings.Join(want, " "))
	}
	if git.dirs[0] != "/repo" {
		t.Errorf("dir = %q, want /repo", git.dirs[0])
	}
}

func TestCreateWorktreeExistingPath(t *testing.T) {
	git := &fakeGit{}
	wm := NewWorktreeManager(git, nil)

	path := t.TempDir()
	res := wm.CreateWorktree(context.Background(), "/repo", "feature/x", path)
	if res.Success {
		t.Fatal("expected failure for existing path")
	}
	if len(git.calls) != 0 {
		t.Errorf("git should not be invoked, got %d calls", len(git.calls))
	}
}

func TestCreateWorktreeMissingArgs(t *testing.T) {
	wm := NewWorktreeManager(&fakeGit{}, nil)
	res := wm.CreateWorktree(context.Background(), "/repo", "", "/tmp/x")
	if res.Success {
		t.Fatal("expected failure for empty branch")
	}
}

func TestRemoveWorktree(t *testing.T) {
	git := &fakeGit{}
	wm := NewWorktreeManager(git, nil)

	res := wm.RemoveWorktree(context.Background(), "/repo", "/repo/wt")
	if !res.Success {
		t.Fatalf("RemoveWorktree failed: %s", res.Error)
	}
	if len(git.calls) != 2 {
		t.Fatalf("calls = %d, want remove then prune", len(git.calls))
	}
	if git.calls[0][1] != "remove" || git.calls[1][1] != "prune" {
		t.Errorf("call order = %v", git.calls)
	}
}

func TestRemoveWorktreeFailure(t *testing.T) {
	git := &fakeGit{failOn: "remove", failErr: errors.New("locked")}
	wm := NewWorktreeManager(git, nil)

	res := wm.RemoveWorktree(context.Background(), "/repo", "/repo/wt")
	if res.Success {
		t.Fatal("expected failure when remove errors")
	}
	if !strings.Contains(res.Error, "removing worktree") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestRemoveWorktreePruneFailureStillOk(t *testing.T) {
	git := &fakeGit{failOn: "prune", failErr: errors.New("nope")}
	wm := NewWorktreeManager(git, nil)

	res := wm.RemoveWorktree(context.Background(), "/repo", "/repo/wt")
	if !res.Success {
		t.Fatalf("prune failure should not fail removal: %s", res.Error)
	}
}

func TestLauncherSubstitution(t *testing.T) {
	var gotName string
	var gotArgs []string
	l := NewLauncher("code {path}", "kitty --directory {dir} {cmd}", nil)
	l.startCommand = func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}

	res := l.OpenEditor(context.Background(), "/work/tree")
	if !res.Success {
		t.Fatalf("OpenEditor failed: %s", res.Error)
	}
	if gotName != "code" || len(gotArgs) != 1 || gotArgs[0] != "/work/tree" {
		t.Errorf("editor launch = %s %v", gotName, gotArgs)
	}

	res = l.OpenTerminal(context.Background(), "/work/tree", "npm start")
	if !res.Success {
		t.Fatalf("OpenTerminal failed: %s", res.Error)
	}
	if gotName != "kitty" {
		t.Errorf("terminal binary = %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "/work/tree") || !strings.Contains(joined, "npm") {
		t.Errorf("terminal args = %v", gotArgs)
	}
}

func TestLauncherUnconfigured(t *testing.T) {
	l := NewLauncher("", "", nil)
	if res := l.OpenEditor(context.Background(), "/x"); res.Success {
		t.Error("expected failure with no editor command")
	}
	if res := l.OpenTerminal(context.Background(), "/x", ""); res.Success {
		t.Error("expected failure with no terminal command")
	}
}

func TestLaunchFailure(t *testing.T) {
	l := NewLauncher("code {path}", "", nil)
	l.startCommand = func(ctx context.Context, name string, args ...string) error {
		return errors.New("exec: not found")
	}
	res := l.OpenEditor(context.Background(), "/x")
	if res.Success {
		t.Fatal("expected failure when start errors")
	}
	if !strings.Contains(res.Error, "code") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestResultHelpers(t *testing.T) {
	if !Ok().Success {
		t.Error("Ok should succeed")
	}
	r := Errf("bad %s", "thing")
	if r.Success || r.Error != "bad thing" {
		t.Errorf("Errf = %+v", r)
	}
}
