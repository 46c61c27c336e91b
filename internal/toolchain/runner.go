// Package toolchain runs external build commands in the background and
// streams their output line by line.
package toolchain

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// lineBuffer bounds how far the worker can run ahead of the reader
const lineBuffer = 1024

// Command is one external program invocation
type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Job is a sequence of commands running on a background goroutine. There is
// no cancellation: once started, every command runs to completion.
type Job struct {
	lines chan string
	done  chan struct{}
}

// Start runs cmds in order on a new goroutine. Stderr is merged into stdout
// and every line is sent to the job. A command that fails to start or exits
// non-zero is reported as a line and the next command still runs.
func Start(cmds []Command, logger *zap.SugaredLogger) *Job {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	j := &Job{
		lines: make(chan string, lineBuffer),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(j.done)
		defer close(j.lines)
		for _, c := range cmds {
			logger.Infow("running command", "cmd", c.String(), "dir", c.Dir)
			if err := run(c, j.lines); err != nil {
				logger.Warnw("command failed", "cmd", c.String(), "error", err)
				j.lines <- fmt.Sprintf("%s: %v", c.Name, err)
			}
		}
		logger.Debugw("background job finished", "commands", len(cmds))
	}()
	return j
}

func run(c Command, out chan<- string) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return err
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		out <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		// keep draining so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, pr)
	}
	return <-waitErr
}

// Poll returns the lines received so far without blocking
func (j *Job) Poll() []string {
	if j == nil {
		return nil
	}
	var out []string
	for {
		select {
		case line, ok := <-j.lines:
			if !ok {
				return out
			}
			out = append(out, line)
		default:
			return out
		}
	}
}

// Wait blocks until every command has finished and returns the remaining lines
func (j *Job) Wait() []string {
	if j == nil {
		return nil
	}
	var out []string
	for line := range j.lines {
		out = append(out, line)
	}
	<-j.done
	return out
}

// Done reports whether the worker has finished. Lines may still be buffered.
func (j *Job) Done() bool {
	if j == nil {
		return true
	}
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}
