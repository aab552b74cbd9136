package capture_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"rscapture/internal/capture"
	"rscapture/internal/selection"
)

type fakeProcess struct {
	ignoreTerm bool

	mu         sync.Mutex
	terminated bool
	killed     bool
	exitOnce   sync.Once
	done       chan struct{}
}

func newFakeProcess(ignoreTerm bool) *fakeProcess {
	return &fakeProcess{ignoreTerm: ignoreTerm, done: make(chan struct{})}
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	p.terminated = true
	p.mu.Unlock()
	if !p.ignoreTerm {
		p.exit()
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.exit()
	return nil
}

func (p *fakeProcess) exit() {
	p.exitOnce.Do(func() { close(p.done) })
}

func (p *fakeProcess) Done() <-chan struct{} { return p.done }
func (p *fakeProcess) Err() error            { return nil }
func (p *fakeProcess) Output() string        { return "" }

type fakeLauncher struct {
	ignoreTerm bool
	failWith   error

	launches int
	binary   string
	args     []string
	proc     *fakeProcess
}

func (l *fakeLauncher) Launch(binary string, args []string) (capture.Process, error) {
	l.launches++
	l.binary = binary
	l.args = args
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.proc = newFakeProcess(l.ignoreTerm)
	return l.proc, nil
}

// newSession wires a session to a fake launcher. The binary is "sh" so the
// PATH lookup that guards Start succeeds without a real encoder installed.
func newSession(t *testing.T, launcher *fakeLauncher, stopTimeout time.Duration) *capture.Session {
	t.Helper()
	opts := capture.Options{
		Binary:      "sh",
		Display:     ":0.0",
		Framerate:   30,
		StopTimeout: stopTimeout,
	}
	return capture.NewSession(opts, nil, capture.WithLauncher(launcher))
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestStartSpawnsGrabForRegion(t *testing.T) {
	launcher := &fakeLauncher{}
	sess := newSession(t, launcher, time.Second)

	region := selection.Rect{X: 10, Y: 20, Width: 800, Height: 600}
	if err := sess.Start(region, "/tmp/out.mkv"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !sess.IsActive() {
		t.Fatal("expected session active after Start")
	}
	if launcher.launches != 1 {
		t.Fatalf("launches = %d", launcher.launches)
	}
	if !hasArgPair(launcher.args, "-f", "x11grab") {
		t.Fatalf("missing x11grab input format in %v", launcher.args)
	}
	if !hasArgPair(launcher.args, "-video_size", "800x600") {
		t.Fatalf("missing video size in %v", launcher.args)
	}
	if !hasArgPair(launcher.args, "-i", ":0.0+10,20") {
		t.Fatalf("missing display offset in %v", launcher.args)
	}
	if launcher.args[len(launcher.args)-1] != "/tmp/out.mkv" {
		t.Fatalf("output path not last arg: %v", launcher.args)
	}
	if got, ok := sess.Region(); !ok || got != region {
		t.Fatalf("Region() = %+v, %v", got, ok)
	}
}

func TestStartWhileRunningIsRejected(t *testing.T) {
	launcher := &fakeLauncher{}
	sess := newSession(t, launcher, time.Second)

	region := selection.Rect{Width: 100, Height: 100}
	if err := sess.Start(region, "/tmp/a.mkv"); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	err := sess.Start(region, "/tmp/b.mkv")
	if !errors.Is(err, capture.ErrAlreadyRunning) {
		t.Fatalf("second Start error = %v, want ErrAlreadyRunning", err)
	}
	if launcher.launches != 1 {
		t.Fatalf("rejected Start must not spawn, launches = %d", launcher.launches)
	}
	// The original recording is untouched and still stoppable.
	path, ok := sess.Stop()
	if !ok || path != "/tmp/a.mkv" {
		t.Fatalf("Stop() = %q, %v", path, ok)
	}
}

func TestStartMissingBinary(t *testing.T) {
	launcher := &fakeLauncher{}
	sess := capture.NewSession(capture.Options{Binary: "rscapture-no-such-encoder"}, nil, capture.WithLauncher(launcher))

	err := sess.Start(selection.Rect{Width: 10, Height: 10}, "/tmp/out.mkv")
	if !errors.Is(err, capture.ErrToolNotFound) {
		t.Fatalf("error = %v, want ErrToolNotFound", err)
	}
	if launcher.launches != 0 {
		t.Fatal("lookup failure must not attempt a spawn")
	}
	if sess.IsActive() {
		t.Fatal("session must stay idle")
	}
}

func TestStartEmptyRegion(t *testing.T) {
	launcher := &fakeLauncher{}
	sess := newSession(t, launcher, time.Second)

	err := sess.Start(selection.Rect{Width: 0, Height: 50}, "/tmp/out.mkv")
	if !errors.Is(err, capture.ErrEmptyRegion) {
		t.Fatalf("error = %v, want ErrEmptyRegion", err)
	}
	if launcher.launches != 0 {
		t.Fatal("empty region must not attempt a spawn")
	}
}

func TestSpawnFailureLeavesSessionIdle(t *testing.T) {
	launcher := &fakeLauncher{failWith: errors.New("fork: resource unavailable")}
	sess := newSession(t, launcher, time.Second)

	err := sess.Start(selection.Rect{Width: 10, Height: 10}, "/tmp/out.mkv")
	if !errors.Is(err, capture.ErrSpawnFailed) {
		t.Fatalf("error = %v, want ErrSpawnFailed", err)
	}
	if sess.IsActive() {
		t.Fatal("session must stay idle after spawn failure")
	}

	// Recovery: a later Start succeeds once the launcher cooperates.
	launcher.failWith = nil
	if err := sess.Start(selection.Rect{Width: 10, Height: 10}, "/tmp/out.mkv"); err != nil {
		t.Fatalf("Start after recovery: %v", err)
	}
}

func TestStopGraceful(t *testing.T) {
	launcher := &fakeLauncher{}
	sess := newSession(t, launcher, time.Second)

	if err := sess.Start(selection.Rect{Width: 10, Height: 10}, "/tmp/out.mkv"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	path, ok := sess.Stop()
	if !ok {
		t.Fatal("Stop() ok = false for running session")
	}
	if path != "/tmp/out.mkv" {
		t.Fatalf("Stop() path = %q", path)
	}
	if !launcher.proc.terminated {
		t.Fatal("expected graceful terminate")
	}
	if launcher.proc.killed {
		t.Fatal("cooperative process must not be killed")
	}
	if sess.IsActive() {
		t.Fatal("session must be idle after Stop")
	}
	if sess.Elapsed() != 0 {
		t.Fatal("elapsed must reset after Stop")
	}
}

func TestStopEscalatesToKill(t *testing.T) {
	launcher := &fakeLauncher{ignoreTerm: true}
	sess := newSession(t, launcher, 50*time.Millisecond)

	if err := sess.Start(selection.Rect{Width: 10, Height: 10}, "/tmp/out.mkv"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	path, ok := sess.Stop()
	if !ok || path != "/tmp/out.mkv" {
		t.Fatalf("Stop() = %q, %v", path, ok)
	}
	if !launcher.proc.terminated {
		t.Fatal("expected terminate before escalation")
	}
	if !launcher.proc.killed {
		t.Fatal("expected kill after timeout")
	}
	if sess.IsActive() {
		t.Fatal("session must be idle after forced stop")
	}
}

func TestStopWhileIdleIsNoop(t *testing.T) {
	sess := newSession(t, &fakeLauncher{}, time.Second)

	if path, ok := sess.Stop(); ok || path != "" {
		t.Fatalf("Stop() on idle session = %q, %v", path, ok)
	}
}

func TestIsActiveDetectsUnexpectedExit(t *testing.T) {
	launcher := &fakeLauncher{}
	sess := newSession(t, launcher, time.Second)

	if err := sess.Start(selection.Rect{Width: 10, Height: 10}, "/tmp/out.mkv"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	launcher.proc.exit()
	if sess.IsActive() {
		t.Fatal("IsActive must report false once the process died")
	}
	// Stop still settles the session and hands back the temp path.
	path, ok := sess.Stop()
	if !ok || path != "/tmp/out.mkv" {
		t.Fatalf("Stop() = %q, %v", path, ok)
	}
}

func TestCommandLauncherTerminatesRealProcess(t *testing.T) {
	launcher := capture.NewCommandLauncher()
	proc, err := launcher.Launch("sh", []string{"-c", "sleep 30"})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if err := proc.Terminate(); err != nil {
		t.Fatalf("Terminate: %v", err)
	}
	select {
	case <-proc.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("process did not exit after SIGTERM")
	}
	if proc.Err() == nil {
		t.Fatal("expected non-nil exit error for signalled process")
	}
}
