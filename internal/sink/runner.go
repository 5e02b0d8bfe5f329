package sink

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Runner runs an external program and returns its trimmed stdout
type Runner interface {
	Run(name string, args ...string) (string, error)
}

// ExecRunner runs programs with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return stdout.String(), fault.Wrap(fmt.Errorf("%s: %s", name, errMsg),
				fmsg.With(fmt.Sprintf("%s failed", name)),
				ftag.With(ftag.Internal))
		}
		return stdout.String(), fault.Wrap(err,
			fmsg.With(fmt.Sprintf("%s execution failed", name)),
			ftag.With(ftag.Internal))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// LookPath reports whether a program is on PATH
func LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
