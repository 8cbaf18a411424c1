// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"git.home.luguber.info/inful/texbuilder/internal/runner"
)

// Response is the scripted outcome for a command.
type Response struct {
	Result *runner.Result
	Err    error
	// Hook runs before the response is returned, e.g. to create output files.
	Hook func(cmd runner.Command)
}

// Fake records every command and answers from a table keyed by command prefix.
// Unmatched commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	calls     []runner.Command
	responses []prefixed
	paths     map[string]bool
	missing   map[string]bool
}

type prefixed struct {
	prefix string
	resp   Response
}

// New returns an empty Fake where every LookPath succeeds.
func New() *Fake {
	return &Fake{paths: map[string]bool{}, missing: map[string]bool{}}
}

// On scripts the response for commands whose String() starts with prefix.
// Later registrations take precedence.
func (f *Fake) On(prefix string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append([]prefixed{{prefix: prefix, resp: resp}}, f.responses...)
	return f
}

// Exit scripts an exit code and output for commands starting with prefix.
func (f *Fake) Exit(prefix string, code int, stdout string) *Fake {
	return f.On(prefix, Response{Result: &runner.Result{ExitCode: code, Stdout: stdout}})
}

// Missing makes LookPath fail for name and Run fail with ErrToolNotFound.
func (f *Fake) Missing(name string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// LookPath implements runner.Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = true
	if f.missing[name] {
		return "", fmt.Errorf("%w: %s", runner.ErrToolNotFound, name)
	}
	return "/usr/bin/" + name, nil
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, cmd runner.Command) (*runner.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	missing := f.missing[cmd.Name]
	var resp *Response
	line := cmd.String()
	for i := range f.responses {
		if strings.HasPrefix(line, f.responses[i].prefix) {
			resp = &f.responses[i].resp
			break
		}
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if missing {
		return nil, fmt.Errorf("%w: %s", runner.ErrToolNotFound, cmd.Name)
	}
	if resp == nil {
		return &runner.Result{}, nil
	}
	if resp.Hook != nil {
		resp.Hook(cmd)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	out := *resp.Result
	if cmd.Stdout != nil && out.Stdout != "" {
		_, _ = cmd.Stdout.Write([]byte(out.Stdout))
	}
	return &out, nil
}

// Calls returns the recorded commands in order.
func (f *Fake) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Command(nil), f.calls...)
}

// Lines returns the recorded command lines in order.
func (f *Fake) Lines() []string {
	var out []string
	for _, c := range f.Calls() {
		out = append(out, c.String())
	}
	return out
}

// Ran reports whether any recorded command line starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// LookedUp reports whether LookPath was asked for name.
func (f *Fake) LookedUp(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths[name]
}
