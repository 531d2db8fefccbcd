// Package guest runs the second installation stage inside the target, via an
// ephemeral systemd-nspawn instance when available and plain chroot
// otherwise.
package guest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os/exec"
	"time"

	"go.trai.ch/zerr"

	"github.com/debstrap/debstrap/internal/core/domain"
	"github.com/debstrap/debstrap/internal/core/ports"
)

// maxProbeAttempts bounds the readiness loop. A guest that never becomes
// reachable fails after this many probes; the bridge never force-kills it.
const maxProbeAttempts = 10

var _ ports.Guest = (*Bridge)(nil)

// Bridge implements ports.Guest.
type Bridge struct {
	logger ports.Logger
	probe  ports.ReadinessProbe

	// Injection points for tests.
	lookPath   func(file string) (string, error)
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
	sleep      func(d time.Duration)
}

// New creates a Bridge with the default machinectl readiness probe.
func New(logger ports.Logger) *Bridge {
	return NewWithProbe(logger, &MachinectlProbe{})
}

// NewWithProbe creates a Bridge with a caller-supplied readiness probe.
func NewWithProbe(logger ports.Logger, probe ports.ReadinessProbe) *Bridge {
	return &Bridge{
		logger:     logger,
		probe:      probe,
		lookPath:   exec.LookPath,
		newCommand: exec.CommandContext,
		sleep:      time.Sleep,
	}
}

// Available reports whether any guest capability exists on the host.
func (b *Bridge) Available() bool {
	if _, err := b.lookPath("systemd-nspawn"); err == nil {
		return true
	}
	_, err := b.lookPath("chroot")
	return err == nil
}

// Run executes args inside the guest rooted at target.
func (b *Bridge) Run(ctx context.Context, target string, args []string) error {
	if _, err := b.lookPath("systemd-nspawn"); err == nil {
		return b.nspawnRun(ctx, target, args)
	}
	if _, err := b.lookPath("chroot"); err == nil {
		return b.chrootRun(ctx, target, args)
	}
	return domain.ErrNoGuestRuntime
}

func (b *Bridge) nspawnRun(ctx context.Context, target string, args []string) error {
	machine := fmt.Sprintf("bootstrap-%08x", rand.Uint32())

	// The instance boots in the background with its console discarded; all
	// interaction goes through the management layer once it is ready.
	boot := b.newCommand(ctx, "systemd-nspawn", "-qbD", target, "-M", machine, "--")
	if err := boot.Start(); err != nil {
		return zerr.Wrap(err, "failed to launch container")
	}

	exited := make(chan error, 1)
	go func() { exited <- boot.Wait() }()

	b.logger.Info("waiting for the container " + machine)
	if err := b.waitReady(ctx, exited, machine); err != nil {
		b.poweroff(ctx, machine)
		return err
	}

	runErr := b.execInGuest(ctx, machine, args)

	b.logger.Info("powering off the container " + machine)
	b.poweroff(ctx, machine)

	return runErr
}

// waitReady polls the probe with logarithmically growing sleeps, aborting
// early if the supervising process exits before the guest answers.
func (b *Bridge) waitReady(ctx context.Context, exited <-chan error, machine string) error {
	for i := 0; i < maxProbeAttempts; i++ {
		select {
		case err := <-exited:
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrGuestStartup, "container exited before becoming ready"),
				"machine", machine), "wait_err", fmt.Sprint(err))
		default:
		}

		if b.probe.Ready(ctx, machine) {
			return nil
		}

		b.sleep(time.Duration(math.Ceil(math.Log(float64(i+1)))) * time.Second)
	}
	return zerr.With(zerr.With(domain.ErrGuestTimeout, "machine", machine), "attempts", maxProbeAttempts)
}

func (b *Bridge) execInGuest(ctx context.Context, machine string, args []string) error {
	runArgs := append([]string{"-M", machine, "-qt", "--"}, args...)
	cmd := b.newCommand(ctx, "systemd-run", runArgs...)
	b.wireOutput(ctx, cmd)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return zerr.With(zerr.With(domain.ErrGuestExit, "machine", machine), "status", exitErr.ExitCode())
		}
		return zerr.Wrap(err, "failed to execute command in container")
	}
	return nil
}

// poweroff tears the instance down. Failure is logged, not returned: the
// script's outcome is already decided by the time teardown runs.
func (b *Bridge) poweroff(ctx context.Context, machine string) {
	cmd := b.newCommand(ctx, "machinectl", "poweroff", machine)
	if err := cmd.Run(); err != nil {
		b.logger.Warn("failed to power off container " + machine + ": " + err.Error())
	}
}

func (b *Bridge) chrootRun(ctx context.Context, target string, args []string) error {
	cmd := b.newCommand(ctx, "chroot", append([]string{target}, args...)...)
	b.wireOutput(ctx, cmd)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return zerr.With(zerr.With(domain.ErrGuestExit, "target", target), "status", exitErr.ExitCode())
		}
		return zerr.Wrap(err, "failed to execute command in chroot")
	}
	return nil
}

// wireOutput routes the guest command's output into the active telemetry
// vertex when one is attached.
func (b *Bridge) wireOutput(ctx context.Context, cmd *exec.Cmd) {
	if v, ok := ports.VertexFromContext(ctx); ok {
		cmd.Stdout = v.Stdout()
		cmd.Stderr = v.Stderr()
	}
}
