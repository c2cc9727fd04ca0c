package topology

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/minitweet/tweetstack/internal/config"
	"github.com/minitweet/tweetstack/internal/docker"
)

// fakeEngine records operations and simulates a Docker engine.
type fakeEngine struct {
	ops        []string
	containers map[string]docker.ContainerState // name -> state
	volumes    map[string]bool
	ids        map[string]string // id -> name
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		containers: map[string]docker.ContainerState{},
		volumes:    map[string]bool{},
		ids:        map[string]string{},
	}
}

func (f *fakeEngine) record(op string) { f.ops = append(f.ops, op) }

func (f *fakeEngine) EnsureNetwork(_ context.Context, name string) error {
	f.record("network " + name)
	return nil
}

func (f *fakeEngine) RemoveNetwork(_ context.Context, name string) error {
	f.record("rm-network " + name)
	return nil
}

func (f *fakeEngine) EnsureVolume(_ context.Context, name string) error {
	f.record("volume " + name)
	f.volumes[name] = true
	return nil
}

func (f *fakeEngine) RemoveVolume(_ context.Context, name string) error {
	f.record("rm-volume " + name)
	delete(f.volumes, name)
	return nil
}

func (f *fakeEngine) VolumeExists(_ context.Context, name string) (bool, error) {
	return f.volumes[name], nil
}

func (f *fakeEngine) CreateContainer(_ context.Context, spec docker.ContainerSpec) (string, error) {
	f.record("create " + spec.Name)
	id := "id-" + spec.Name
	f.ids[id] = spec.Name
	f.containers[spec.Name] = docker.ContainerState{Status: "created"}
	return id, nil
}

func (f *fakeEngine) FindContainer(_ context.Context, name string) (string, error) {
	if _, ok := f.containers[name]; ok {
		return "id-" + name, nil
	}
	return "", nil
}

func (f *fakeEngine) StartContainer(_ context.Context, id string) error {
	name := f.ids[id]
	f.record("start " + name)
	f.containers[name] = docker.ContainerState{Running: true, Status: "running", Health: "healthy"}
	return nil
}

func (f *fakeEngine) StopContainer(_ context.Context, id string) error {
	name := f.ids[id]
	f.record("stop " + name)
	f.containers[name] = docker.ContainerState{Status: "exited"}
	return nil
}

func (f *fakeEngine) RestartContainer(_ context.Context, id string) error {
	f.record("restart " + f.ids[id])
	return nil
}

func (f *fakeEngine) RemoveContainer(_ context.Context, id string) error {
	name := f.ids[id]
	f.record("rm " + name)
	delete(f.containers, name)
	return nil
}

func (f *fakeEngine) InspectState(_ context.Context, id string) (docker.ContainerState, error) {
	return f.containers[f.ids[id]], nil
}

func (f *fakeEngine) WaitHealthy(_ context.Context, id string, _ time.Duration) error {
	f.record("wait-healthy " + f.ids[id])
	return nil
}

func (f *fakeEngine) ContainerLogs(_ context.Context, _ string, _ string, _ bool) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("log line\n")), nil
}

func (f *fakeEngine) BuildImage(_ context.Context, _, tag string, _ io.Writer) error {
	f.record("build " + tag)
	return nil
}

func testManager(engine Engine) *Manager {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(engine, cfg, logger)
}

func indexOf(ops []string, op string) int {
	for i, o := range ops {
		if o == op {
			return i
		}
	}
	return -1
}

func TestUpGatesWebOnDBHealth(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("up: %v", err)
	}

	wait := indexOf(engine.ops, "wait-healthy "+DBContainer)
	createWeb := indexOf(engine.ops, "create "+WebContainer)
	startDB := indexOf(engine.ops, "start "+DBContainer)
	if wait < 0 || createWeb < 0 || startDB < 0 {
		t.Fatalf("missing expected ops: %v", engine.ops)
	}
	if !(startDB < wait && wait < createWeb) {
		t.Errorf("web container not gated on db health: %v", engine.ops)
	}
}

func TestUpIsIdempotent(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("first up: %v", err)
	}
	creates := len(engine.ops)
	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("second up: %v", err)
	}

	for _, op := range engine.ops[creates:] {
		if strings.HasPrefix(op, "create ") || strings.HasPrefix(op, "start ") {
			t.Errorf("second up re-created or re-started a container: %v", engine.ops[creates:])
		}
	}
}

func TestDownStopsWebBeforeDB(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := m.Down(context.Background()); err != nil {
		t.Fatalf("down: %v", err)
	}

	stopWeb := indexOf(engine.ops, "stop "+WebContainer)
	stopDB := indexOf(engine.ops, "stop "+DBContainer)
	if stopWeb < 0 || stopDB < 0 || stopWeb > stopDB {
		t.Errorf("expected web stopped before db: %v", engine.ops)
	}
}

func TestDownWithNothingRunning(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if err := m.Down(context.Background()); err != nil {
		t.Fatalf("down on empty topology: %v", err)
	}
	for _, op := range engine.ops {
		if strings.HasPrefix(op, "stop ") {
			t.Errorf("stopped a container that does not exist: %v", engine.ops)
		}
	}
}

func TestDestroyRemovesEverything(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := m.Destroy(context.Background()); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	for _, vol := range Volumes {
		if engine.volumes[vol] {
			t.Errorf("volume %s survived destroy", vol)
		}
	}
	if len(engine.containers) != 0 {
		t.Errorf("containers survived destroy: %v", engine.containers)
	}
	if indexOf(engine.ops, "rm-network "+NetworkName) < 0 {
		t.Errorf("network not removed: %v", engine.ops)
	}
}

func TestDownKeepsVolumes(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if err := m.Up(context.Background()); err != nil {
		t.Fatalf("up: %v", err)
	}
	if err := m.Down(context.Background()); err != nil {
		t.Fatalf("down: %v", err)
	}

	for _, vol := range Volumes {
		if !engine.volumes[vol] {
			t.Errorf("volume %s removed by down", vol)
		}
	}
}

func TestStatusReportsAbsent(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	report, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(report.Containers) != 2 {
		t.Fatalf("expected 2 containers, got %d", len(report.Containers))
	}
	for _, cs := range report.Containers {
		if cs.Status != "absent" {
			t.Errorf("%s status = %q, want absent", cs.Name, cs.Status)
		}
	}
}

func TestLogsUnknownService(t *testing.T) {
	engine := newFakeEngine()
	m := testManager(engine)

	if _, err := m.Logs(context.Background(), "cache", "10", false); err == nil {
		t.Error("expected error for unknown service")
	}
}

func TestWebSpecEnvAndMounts(t *testing.T) {
	m := testManager(newFakeEngine())
	spec := m.webSpec()

	if spec.Restart != "unless-stopped" {
		t.Errorf("restart policy = %q", spec.Restart)
	}
	found := false
	for _, e := range spec.Env {
		if e == "DB_HOST=postgres" {
			found = true
		}
	}
	if !found {
		t.Errorf("DB_HOST=postgres missing from env: %v", spec.Env)
	}
	if len(spec.Mounts) != 2 {
		t.Errorf("expected media and static mounts, got %v", spec.Mounts)
	}
	if spec.Health == nil {
		t.Error("web container must declare a health probe")
	}
}
