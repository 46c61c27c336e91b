package toolchain

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
}

func sh(script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}}
}

func TestJobRunsCommandsInOrder(t *testing.T) {
	skipWithoutShell(t)
	job := Start([]Command{
		sh("echo compiling; echo warning >&2"),
		sh("echo finished"),
	}, nil)

	lines := job.Wait()
	if diff := cmp.Diff([]string{"compiling", "warning", "finished"}, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if !job.Done() {
		t.Fatalf("job should be done after Wait")
	}
}

func TestJobContinuesAfterFailure(t *testing.T) {
	skipWithoutShell(t)
	job := Start([]Command{
		sh("echo before; exit 3"),
		{Name: "definitely-not-a-real-binary-ironcoder"},
		sh("echo after"),
	}, nil)

	lines := job.Wait()
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %q", lines)
	}
	if lines[0] != "before" || lines[3] != "after" {
		t.Fatalf("unexpected lines %q", lines)
	}
	if !strings.Contains(lines[1], "exit status 3") {
		t.Fatalf("expected exit status line, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "definitely-not-a-real-binary-ironcoder:") {
		t.Fatalf("expected start failure line, got %q", lines[2])
	}
}

func TestPollDoesNotBlock(t *testing.T) {
	skipWithoutShell(t)
	job := Start([]Command{sh("echo first; sleep 0.3; echo second")}, nil)

	var got []string
	deadline := time.Now().Add(5 * time.Second)
	for !job.Done() && time.Now().Before(deadline) {
		start := time.Now()
		got = append(got, job.Poll()...)
		if time.Since(start) > 100*time.Millisecond {
			t.Fatalf("Poll blocked for %v", time.Since(start))
		}
		time.Sleep(10 * time.Millisecond)
	}
	got = append(got, job.Wait()...)

	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestNilJob(t *testing.T) {
	var j *Job
	if j.Poll() != nil || j.Wait() != nil || !j.Done() {
		t.Fatalf("nil job should be inert and done")
	}
}

func TestCommandString(t *testing.T) {
	c := Command{Name: "cargo", Args: []string{"-Z", "unstable-options", "-C", "/tmp/p", "build"}}
	if got := c.String(); got != "cargo -Z unstable-options -C /tmp/p build" {
		t.Fatalf("String() = %q", got)
	}
}
