package guest

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/debstrap/debstrap/internal/core/ports"
)

var _ ports.ReadinessProbe = (*MachinectlProbe)(nil)

// MachinectlProbe checks guest readiness with a single management round
// trip. A booting instance registers with the machine manager before its
// init is ready to accept commands, so the probe also requires the reported
// state to be running.
type MachinectlProbe struct{}

// Ready reports whether the named instance answers and is running.
func (p *MachinectlProbe) Ready(ctx context.Context, machine string) bool {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "machinectl", "show", "--property=State", machine)
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return false
	}
	return strings.Contains(out.String(), "State=running")
}
