package sequence

import (
	"io"
	"os"
	"sync"
)

// LogWriter captures entrypoint output. It writes to a log file, mirrors
// to an extra writer (normally stdout, so the container log stream stays
// complete), and broadcasts to subscribers such as the ops agent.
type LogWriter struct {
	mu          sync.Mutex
	file        *os.File
	mirror      io.Writer
	subscribers []chan []byte
}

// NewLogWriter creates a LogWriter backed by the given file path. An empty
// path disables the file; mirror may be nil.
func NewLogWriter(path string, mirror io.Writer) (*LogWriter, error) {
	lw := &LogWriter{mirror: mirror}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, err
		}
		lw.file = f
	}
	return lw, nil
}

// Write implements io.Writer.
func (lw *LogWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if lw.file != nil {
		if _, err := lw.file.Write(p); err != nil {
			return 0, err
		}
	}
	if lw.mirror != nil {
		lw.mirror.Write(p)
	}

	// Broadcast to subscribers (non-blocking).
	data := make([]byte, len(p))
	copy(data, p)
	for _, ch := range lw.subscribers {
		select {
		case ch <- data:
		default: // drop if subscriber is slow
		}
	}

	return len(p), nil
}

// Subscribe returns a channel that receives log data.
func (lw *LogWriter) Subscribe() chan []byte {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	ch := make(chan []byte, 64)
	lw.subscribers = append(lw.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber channel.
func (lw *LogWriter) Unsubscribe(ch chan []byte) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	for i, sub := range lw.subscribers {
		if sub == ch {
			lw.subscribers = append(lw.subscribers[:i], lw.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes all subscriber channels and the underlying file.
func (lw *LogWriter) Close() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	for _, ch := range lw.subscribers {
		close(ch)
	}
	lw.subscribers = nil
	if lw.file != nil {
		return lw.file.Close()
	}
	return nil
}
