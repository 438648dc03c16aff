package database

import (
	"bufio"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
)

// appendLog is a line-delimited JSON log. Each Append writes one full
// snapshot of an entity and syncs before returning, so an acknowledged write
// survives a crash.
type appendLog struct {
	mu sync.Mutex
	f  *os.File
}

func openAppendLog(path string) (*appendLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &appendLog{f: f}, nil
}

func (l *appendLog) Append(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		return err
	}
	return l.f.Sync()
}

func (l *appendLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// replayLog feeds every line of the log at path to fn, oldest first. A line
// that fails to decode is skipped with a warning rather than blocking
// startup; a torn final write after a crash must not take the service down.
func replayLog(path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(sc.Bytes()); err != nil {
			log.Printf("⚠️  Skipping bad line in %s: %v", path, err)
		}
	}
	return sc.Err()
}
