package guest

import (
	"context"
	"os/exec"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debstrap/debstrap/internal/core/domain"
)

type testLogger struct{}

func (testLogger) Info(string) {}
func (testLogger) Warn(string) {}
func (testLogger) Error(error) {}

type fakeProbe struct {
	calls     atomic.Int64
	readyFrom int64 // probe call number that first reports ready; 0 = never
}

func (p *fakeProbe) Ready(_ context.Context, _ string) bool {
	n := p.calls.Add(1)
	return p.readyFrom > 0 && n >= p.readyFrom
}

// commandLog records every command the bridge spawns and substitutes a
// harmless replacement so tests never touch systemd.
type commandLog struct {
	mu    sync.Mutex
	calls [][]string

	// substitute maps a command name to the binary actually run.
	substitute map[string]string
}

func (l *commandLog) new(ctx context.Context, name string, args ...string) *exec.Cmd {
	l.mu.Lock()
	l.calls = append(l.calls, append([]string{name}, args...))
	l.mu.Unlock()

	if sub, ok := l.substitute[name]; ok {
		return exec.CommandContext(ctx, sub)
	}
	return exec.CommandContext(ctx, "true")
}

func (l *commandLog) named(name string) [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out [][]string
	for _, call := range l.calls {
		if call[0] == name {
			out = append(out, call)
		}
	}
	return out
}

func lookPathWith(available ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		for _, name := range available {
			if name == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestAvailable(t *testing.T) {
	b := New(testLogger{})

	b.lookPath = lookPathWith("systemd-nspawn")
	assert.True(t, b.Available())

	b.lookPath = lookPathWith("chroot")
	assert.True(t, b.Available())

	b.lookPath = lookPathWith()
	assert.False(t, b.Available())
}

func TestRun_NoRuntime(t *testing.T) {
	b := New(testLogger{})
	b.lookPath = lookPathWith()

	err := b.Run(context.Background(), "/target", []string{"/install.sh"})
	require.ErrorIs(t, err, domain.ErrNoGuestRuntime)
}

func TestRun_ChrootFallback(t *testing.T) {
	log := &commandLog{}
	b := New(testLogger{})
	b.lookPath = lookPathWith("chroot")
	b.newCommand = log.new

	err := b.Run(context.Background(), "/target", []string{"/install.sh", "--verbose"})
	require.NoError(t, err)

	calls := log.named("chroot")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"chroot", "/target", "/install.sh", "--verbose"}, calls[0])
}

func TestRun_ChrootNonZeroExit(t *testing.T) {
	log := &commandLog{substitute: map[string]string{"chroot": "false"}}
	b := New(testLogger{})
	b.lookPath = lookPathWith("chroot")
	b.newCommand = log.new

	err := b.Run(context.Background(), "/target", []string{"/install.sh"})
	require.ErrorIs(t, err, domain.ErrGuestExit)
}

func TestRun_NspawnHappyPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe := &fakeProbe{readyFrom: 3}
	log := &commandLog{substitute: map[string]string{"systemd-nspawn": "sleep"}}

	var sleeps []time.Duration
	b := NewWithProbe(testLogger{}, probe)
	b.lookPath = lookPathWith("systemd-nspawn")
	b.newCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if name == "systemd-nspawn" {
			log.mu.Lock()
			log.calls = append(log.calls, append([]string{name}, args...))
			log.mu.Unlock()
			return exec.CommandContext(ctx, "sleep", "30")
		}
		return log.new(ctx, name, args...)
	}
	b.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }

	err := b.Run(ctx, "/target", []string{"/install.sh"})
	require.NoError(t, err)

	// The instance boots quietly in the background.
	boots := log.named("systemd-nspawn")
	require.Len(t, boots, 1)
	assert.Equal(t, "-qbD", boots[0][1])
	assert.Equal(t, "/target", boots[0][2])
	machine := boots[0][4]
	assert.Contains(t, machine, "bootstrap-")

	// The script runs through the management layer against that instance.
	runs := log.named("systemd-run")
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"systemd-run", "-M", machine, "-qt", "--", "/install.sh"}, runs[0])

	// Teardown always happens.
	offs := log.named("machinectl")
	require.Len(t, offs, 1)
	assert.Equal(t, []string{"machinectl", "poweroff", machine}, offs[0])

	// Backoff grows logarithmically: ceil(ln(1))=0, ceil(ln(2))=1.
	require.Len(t, sleeps, 2)
	assert.Equal(t, time.Duration(0), sleeps[0])
	assert.Equal(t, time.Second, sleeps[1])
}

func TestRun_NspawnReadinessTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe := &fakeProbe{} // never ready
	log := &commandLog{}

	b := NewWithProbe(testLogger{}, probe)
	b.lookPath = lookPathWith("systemd-nspawn")
	b.newCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if name == "systemd-nspawn" {
			return exec.CommandContext(ctx, "sleep", "30")
		}
		return log.new(ctx, name, args...)
	}
	b.sleep = func(time.Duration) {}

	err := b.Run(ctx, "/target", []string{"/install.sh"})
	require.ErrorIs(t, err, domain.ErrGuestTimeout)
	assert.EqualValues(t, maxProbeAttempts, probe.calls.Load())

	// Teardown still runs after a failed wait.
	assert.Len(t, log.named("machinectl"), 1)
}

func TestRun_NspawnChildExitsEarly(t *testing.T) {
	probe := &fakeProbe{} // never ready
	log := &commandLog{substitute: map[string]string{"systemd-nspawn": "true"}}

	b := NewWithProbe(testLogger{}, probe)
	b.lookPath = lookPathWith("systemd-nspawn")
	b.newCommand = log.new
	// Real (short) sleeps so the child's exit is observed before the
	// attempt budget runs out.
	b.sleep = func(time.Duration) { time.Sleep(50 * time.Millisecond) }

	err := b.Run(context.Background(), "/target", []string{"/install.sh"})
	require.ErrorIs(t, err, domain.ErrGuestStartup)
}

func TestRun_NspawnScriptFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probe := &fakeProbe{readyFrom: 1}
	log := &commandLog{substitute: map[string]string{"systemd-run": "false"}}

	b := NewWithProbe(testLogger{}, probe)
	b.lookPath = lookPathWith("systemd-nspawn")
	b.newCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if name == "systemd-nspawn" {
			return exec.CommandContext(ctx, "sleep", "30")
		}
		return log.new(ctx, name, args...)
	}
	b.sleep = func(time.Duration) {}

	err := b.Run(ctx, "/target", []string{"/install.sh"})
	require.ErrorIs(t, err, domain.ErrGuestExit)

	// A failing script must not skip teardown.
	assert.Len(t, log.named("machinectl"), 1)
}

func TestMachinectlProbe_MissingBinary(t *testing.T) {
	if _, err := exec.LookPath("machinectl"); err == nil {
		t.Skip("machinectl present on this host")
	}
	p := &MachinectlProbe{}
	assert.False(t, p.Ready(context.Background(), "bootstrap-00000000"))
}
