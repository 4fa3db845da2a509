// SPDX-License-Identifier: MPL-2.0

package scriptcmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/types"
)

func newContext(stdout *bytes.Buffer) *command.Context {
	return &command.Context{
		Key:    "hello",
		Args:   map[string]any{"name": "world"},
		Flags:  map[string]any{"loud": true, "dry-run": false, "config": map[string]any{"a": float64(1)}},
		Stdout: stdout,
	}
}

func TestRunExportsParams(t *testing.T) {
	t.Parallel()

	cmd, err := New(Spec{Run: `echo "hello $ARG_NAME loud=$FLAG_LOUD cfg=$FLAG_CONFIG cmd=$CMDKIT_COMMAND"`})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	res, err := cmd.Run(context.Background(), newContext(&out))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res != types.ExitSuccess {
		t.Errorf("Run() = %v, want 0", res)
	}
	want := `hello world loud=true cfg={"a":1} cmd=hello`
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunExitStatusIsResult(t *testing.T) {
	t.Parallel()

	cmd, err := New(Spec{Run: "exit 3"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := cmd.Run(context.Background(), newContext(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res != types.ExitCode(3) {
		t.Errorf("Run() = %v, want 3", res)
	}
}

func TestPositionalParams(t *testing.T) {
	t.Parallel()

	cmd, err := New(Spec{Run: `echo "$# $1 $2"`})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	cc := newContext(&out)
	cc.RawArgs = []string{"-v", "two"}
	if _, err := cmd.Run(context.Background(), cc); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out.String()); got != "2 -v two" {
		t.Errorf("output = %q", got)
	}
}

func TestPhases(t *testing.T) {
	t.Parallel()

	cmd, err := New(Spec{Run: "true", Init: "exit 2", Cleanup: "echo bye"})
	if err != nil {
		t.Fatal(err)
	}

	if !cmd.Declares(command.PhaseInit) || !cmd.Declares(command.PhaseCleanup) {
		t.Error("init and cleanup should be declared")
	}
	if cmd.Declares(command.PhaseDryRun) || command.Declares(cmd, command.PhaseDryRun) {
		t.Error("dryRun should not be declared")
	}
	if command.Declares(cmd, command.PhaseConfigureContext) {
		t.Error("configureContext should not be declared")
	}

	var out bytes.Buffer
	if err := cmd.Init(context.Background(), newContext(&out)); err == nil || !strings.Contains(err.Error(), "status 2") {
		t.Errorf("Init() error = %v, want status 2", err)
	}
	if err := cmd.Cleanup(context.Background(), newContext(&out)); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
	if !strings.Contains(out.String(), "bye") {
		t.Errorf("cleanup output = %q", out.String())
	}
}

func TestInvalidScript(t *testing.T) {
	t.Parallel()

	_, err := New(Spec{Path: "commands/bad.cue", Run: "if then fi ("})
	var se *ScriptError
	if !errors.As(err, &se) || se.Phase != command.PhaseRun || se.Path != "commands/bad.cue" {
		t.Errorf("New() error = %v, want *ScriptError for run", err)
	}
}

func TestInvokeBuiltin(t *testing.T) {
	t.Parallel()

	var gotKey string
	var gotArgs []string
	cc := newContext(&bytes.Buffer{})
	cc.Invoke = func(key string) command.Invoker {
		return func(_ context.Context, argv ...string) (int, error) {
			gotKey, gotArgs = key, argv
			return 4, nil
		}
	}

	cmd, err := New(Spec{Run: InvokeBuiltin + " db/migrate --to 3"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := cmd.Run(context.Background(), cc)
	if err != nil {
		t.Fatal(err)
	}
	if res != types.ExitCode(4) {
		t.Errorf("Run() = %v, want 4", res)
	}
	if gotKey != "db/migrate" || strings.Join(gotArgs, " ") != "--to 3" {
		t.Errorf("invoked %q with %v", gotKey, gotArgs)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Parallel()

	names := map[string]string{"dry-run": "DRY_RUN", "fromAccount": "FROMACCOUNT", "tag2": "TAG2"}
	for in, want := range names {
		if got := EnvName(in); got != want {
			t.Errorf("EnvName(%q) = %q, want %q", in, got, want)
		}
	}

	values := []struct {
		in   any
		want string
		ok   bool
	}{
		{in: nil, ok: false},
		{in: "x", want: "x", ok: true},
		{in: false, want: "false", ok: true},
		{in: float64(10), want: "10", ok: true},
		{in: 2.5, want: "2.5", ok: true},
		{in: []any{"a", "b"}, want: `["a","b"]`, ok: true},
	}
	for _, v := range values {
		got, ok := EnvValue(v.in)
		if got != v.want || ok != v.ok {
			t.Errorf("EnvValue(%v) = %q, %v; want %q, %v", v.in, got, ok, v.want, v.ok)
		}
	}
}
