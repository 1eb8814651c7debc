package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// Warnings ignore the location tone and configured duration.
const (
	WarningFrequency = 1000
	WarningDuration  = 2 * time.Second
)

// CommandRunner runs an external program.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Beeper plays a tone through the platform's sound tool: beep on linux,
// SoX play on darwin and the console beep on windows.
type Beeper struct {
	run      CommandRunner
	goos     string
	duration time.Duration
	beeps    int
}

type BeeperOptions struct {
	Duration time.Duration
	Beeps    int
	// Runner and GOOS default to os/exec and runtime.GOOS.
	Runner CommandRunner
	GOOS   string
}

func NewBeeper(opts BeeperOptions) *Beeper {
	b := &Beeper{
		run:      opts.Runner,
		goos:     opts.GOOS,
		duration: opts.Duration,
		beeps:    opts.Beeps,
	}
	if b.run == nil {
		b.run = execRunner
	}
	if b.goos == "" {
		b.goos = runtime.GOOS
	}
	if b.duration <= 0 {
		b.duration = time.Second
	}
	if b.beeps <= 0 {
		b.beeps = 1
	}
	return b
}

func (b *Beeper) Name() string { return "beep" }

// Notify beeps at the alert frequency, or the fixed warning tone.
func (b *Beeper) Notify(ctx context.Context, alert Alert) error {
	freq, duration := alert.Frequency, b.duration
	if alert.Warning {
		freq, duration = WarningFrequency, WarningDuration
	}
	name, args := b.command(freq, duration)
	for i := 0; i < b.beeps; i++ {
		if err := b.run(ctx, name, args...); err != nil {
			return fmt.Errorf("run %s: %w", name, err)
		}
	}
	return nil
}

func (b *Beeper) command(freq int, duration time.Duration) (string, []string) {
	ms := strconv.FormatInt(duration.Milliseconds(), 10)
	switch b.goos {
	case "darwin":
		return "play", []string{"-q", "-n", "synth", strconv.FormatFloat(duration.Seconds(), 'f', -1, 64), "sin", strconv.Itoa(freq)}
	case "windows":
		return "powershell", []string{"-NoProfile", "-Command", fmt.Sprintf("[console]::beep(%d,%s)", freq, ms)}
	default:
		return "beep", []string{"-f", strconv.Itoa(freq), "-l", ms}
	}
}
