package sequence

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLogWriterFileAndMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entrypoint.log")
	var mirror bytes.Buffer

	lw, err := NewLogWriter(path, &mirror)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	lw.Write([]byte("hello\n"))
	if err := lw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if string(got) != "hello\n" {
		t.Errorf("file content = %q", got)
	}
	if mirror.String() != "hello\n" {
		t.Errorf("mirror content = %q", mirror.String())
	}
}

func TestLogWriterSubscribers(t *testing.T) {
	lw, err := NewLogWriter("", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer lw.Close()

	ch := lw.Subscribe()
	lw.Write([]byte("line\n"))

	select {
	case data := <-ch:
		if string(data) != "line\n" {
			t.Errorf("received %q", data)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive data")
	}

	lw.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}
}
