package apps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultActivateTimeout bounds one activation command.
const DefaultActivateTimeout = 5 * time.Second

// ExecActivator runs a command for each activation. Every {id} in the
// arguments is replaced by the application identifier; the command is run
// directly, not through a shell.
type ExecActivator struct {
	args    []string
	timeout time.Duration
	log     *zap.Logger
}

// NewExecActivator parses a whitespace separated command template such as
// "open -b {id}".
func NewExecActivator(template string, log *zap.Logger) (*ExecActivator, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, errors.New("activation command is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecActivator{args: args, timeout: DefaultActivateTimeout, log: log.Named("activator")}, nil
}

// Command returns the argv that would activate id.
func (a *ExecActivator) Command(id string) []string {
	out := make([]string, len(a.args))
	for i, arg := range a.args {
		out[i] = strings.ReplaceAll(arg, "{id}", id)
	}
	return out
}

func (a *ExecActivator) Activate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	argv := a.Command(id)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	a.log.Debug("activation command finished",
		zap.Strings("argv", argv),
		zap.Duration("took", time.Since(start)),
		zap.Error(err))
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// LogActivator only records activations in the log.
type LogActivator struct {
	Log *zap.Logger
}

func (a LogActivator) Activate(_ context.Context, id string) error {
	if a.Log != nil {
		a.Log.Info("activate", zap.String("app_id", id))
	}
	return nil
}
