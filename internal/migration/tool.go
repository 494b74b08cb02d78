package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Invocation is a single, fully resolved engine command.
type Invocation struct {
	Bin  string
	Args []string
	Dir  string
	Env  []string
}

func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Bin}, inv.Args...), " ")
}

// Runner executes one engine invocation and blocks until it finishes.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecRunner runs invocations through os/exec with the engine's output
// attached to the current process.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Bin, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// CaptureRunner runs invocations and retains the engine's combined output
// instead of streaming it. Used where the output has to be forwarded, for
// example as an MCP tool result.
type CaptureRunner struct {
	mu   sync.Mutex
	last []byte
}

func (r *CaptureRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Bin, inv.Args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}
	out, err := cmd.CombinedOutput()

	r.mu.Lock()
	r.last = out
	r.mu.Unlock()

	return err
}

// LastOutput returns the combined output of the most recent invocation.
func (r *CaptureRunner) LastOutput() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.last)
}

// ToolOptions configure how engine invocations are assembled.
type ToolOptions struct {
	// Bin is the engine executable. Defaults to "alembic".
	Bin string
	// ConfigFile, when set, is passed to the engine as "-c <file>".
	ConfigFile string
	// WorkDir is the working directory for the engine process.
	WorkDir string
	// DatabaseURL, when set, is exported to the engine process so its
	// environment script can pick up the connection string.
	DatabaseURL string
	// Runner executes the invocations. Defaults to ExecRunner.
	Runner Runner
}

// Tool wraps the external schema-migration engine. The engine owns all
// migration state and database connectivity; each Tool operation assembles
// exactly one invocation and hands it to the runner. Nothing is retried,
// and a failing invocation aborts the run with the engine's exit code.
type Tool struct {
	bin        string
	configFile string
	workDir    string
	env        []string
	runner     Runner
}

const DefaultBin = "alembic"

func NewTool(opts ToolOptions) *Tool {
	t := &Tool{
		bin:        opts.Bin,
		configFile: opts.ConfigFile,
		workDir:    opts.WorkDir,
		runner:     opts.Runner,
	}
	if t.bin == "" {
		t.bin = DefaultBin
	}
	if t.runner == nil {
		t.runner = ExecRunner{}
	}
	if opts.DatabaseURL != "" {
		t.env = []string{"DATABASE_URL=" + opts.DatabaseURL}
	}
	return t
}

func (t *Tool) invocation(args ...string) Invocation {
	argv := make([]string, 0, len(args)+2)
	if t.configFile != "" {
		argv = append(argv, "-c", t.configFile)
	}
	argv = append(argv, args...)
	return Invocation{Bin: t.bin, Args: argv, Dir: t.workDir, Env: t.env}
}

// GenerateRevision asks the engine to diff the models against the schema
// and write a new revision file with the given message.
func (t *Tool) GenerateRevision(ctx context.Context, message string) error {
	return t.runner.Run(ctx, t.invocation("revision", "--autogenerate", "-m", message))
}

// UpgradeLatest applies every pending revision.
func (t *Tool) UpgradeLatest(ctx context.Context) error {
	return t.runner.Run(ctx, t.invocation("upgrade", "head"))
}

// Downgrade rolls back the given number of revisions. Steps must be at
// least one; callers validate user input before getting here.
func (t *Tool) Downgrade(ctx context.Context, steps int) error {
	if steps < 1 {
		return fmt.Errorf("downgrade steps must be at least 1, got %d", steps)
	}
	return t.runner.Run(ctx, t.invocation("downgrade", "-"+strconv.Itoa(steps)))
}

// HistoryVerbose prints the full revision history.
func (t *Tool) HistoryVerbose(ctx context.Context) error {
	return t.runner.Run(ctx, t.invocation("history", "--verbose"))
}

// Current prints the revision the database is at.
func (t *Tool) Current(ctx context.Context) error {
	return t.runner.Run(ctx, t.invocation("current"))
}

// Reset rolls the schema all the way back to the base revision.
func (t *Tool) Reset(ctx context.Context) error {
	return t.runner.Run(ctx, t.invocation("downgrade", "base"))
}

// ExitCode maps a runner error to the dispatcher's process exit code: nil
// is success, an engine failure surfaces the engine's own exit code, and
// anything else (binary missing, context cancelled) is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
