package lockfile

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	ps "github.com/mitchellh/go-ps"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withProcesses(t *testing.T, procs map[int]string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		exe, ok := procs[pid]
		if !ok {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
}

func TestHolder(t *testing.T) {
	withProcesses(t, map[int]string{
		100: "habitshared",
		200: "bash",
	})

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"live server", "100", 100},
		{"other executable", "200", 0},
		{"dead process", "300", 0},
		{"malformed", "not-a-pid", 0},
		{"negative", "-5", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "habitshared.pid")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			got, err := Holder(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Holder() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHolderMissingFile(t *testing.T) {
	pid, err := Holder(filepath.Join(t.TempDir(), "missing.pid"))
	if err != nil || pid != 0 {
		t.Errorf("Holder() = %d, %v", pid, err)
	}
}

func TestAcquireAndRelease(t *testing.T) {
	withProcesses(t, map[int]string{})
	path := filepath.Join(t.TempDir(), "habitshared.pid")

	release, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != strconv.Itoa(os.Getpid()) {
		t.Errorf("lockfile content = %q", content)
	}

	release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("release should remove the lockfile")
	}
}

func TestAcquireRefusesLiveServer(t *testing.T) {
	withProcesses(t, map[int]string{42: "habitshared"})
	path := filepath.Join(t.TempDir(), "habitshared.pid")
	if err := os.WriteFile(path, []byte("42"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Acquire(path); !errors.Is(err, ErrRunning) {
		t.Errorf("err = %v, want ErrRunning", err)
	}
	if err := Check(path); !errors.Is(err, ErrRunning) {
		t.Errorf("Check err = %v, want ErrRunning", err)
	}
}
