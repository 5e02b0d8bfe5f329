package sink

import (
	"runtime"
	"time"
)

// Environment answers condition queries from the host system
type Environment struct {
	runner Runner
	goos   string
	now    func() time.Time
}

// NewEnvironment creates an environment for the current platform. A nil
// runner uses ExecRunner.
func NewEnvironment(runner Runner) *Environment {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Environment{runner: runner, goos: runtime.GOOS, now: time.Now}
}

// ActiveApp returns the name of the frontmost application. On Linux this
// is the window class of the active window.
func (e *Environment) ActiveApp() (string, error) {
	switch e.goos {
	case "darwin":
		return e.runner.Run("osascript", "-e",
			`tell application "System Events" to get name of first application process whose frontmost is true`)
	case "linux":
		return e.runner.Run("xdotool", "getactivewindow", "getwindowclassname")
	}
	return "", unsupported("active application lookup", e.goos)
}

func (e *Environment) Now() time.Time {
	return e.now()
}
