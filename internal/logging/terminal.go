package logging

import (
	"strings"
	"sync"
)

// Terminal is the in-app terminal buffer. It is an io.Writer so it can sit
// behind Tee and also receive toolchain output.
type Terminal struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Write(p)
}

// WriteLine appends line followed by a newline.
func (t *Terminal) WriteLine(line string) {
	t.mu.Lock()
	t.buf.WriteString(line)
	t.buf.WriteByte('\n')
	t.mu.Unlock()
}

func (t *Terminal) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

// Lines returns the buffer split into lines, without the trailing empty line.
func (t *Terminal) Lines() []string {
	s := strings.TrimSuffix(t.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func (t *Terminal) Reset() {
	t.mu.Lock()
	t.buf.Reset()
	t.mu.Unlock()
}
