// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/invowk/cmdkit/internal/commandtree"
	"github.com/invowk/cmdkit/internal/config"
	"github.com/invowk/cmdkit/internal/logsink"
	"github.com/invowk/cmdkit/internal/testutil"
	"github.com/invowk/cmdkit/pkg/command"
	"github.com/invowk/cmdkit/pkg/schema"
	"github.com/invowk/cmdkit/pkg/types"
)

type harness struct {
	rt     *Runtime
	log    *logsink.Recorder
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, fsys afero.Fs, sources ...config.SourceEntry) *harness {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Sources = sources
	h := &harness{log: &logsink.Recorder{}, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	if fsys == nil {
		fsys = afero.NewMemMapFs()
	}
	h.rt = New(
		WithFs(fsys),
		WithConfigProvider(config.StaticProvider{Config: cfg}),
		WithOutput(h.stdout, h.stderr),
		WithLog(h.log),
		WithDiagnostics(logsink.Discard()),
	)
	return h
}

func (h *harness) run(t *testing.T, argv ...string) types.ExitCode {
	t.Helper()
	return h.rt.Run(context.Background(), argv)
}

// recordingCommand captures what each phase observed.
type recordingCommand struct {
	args      map[string]any
	flags     map[string]any
	ran       bool
	dryRan    bool
	cleanedUp bool
	result    any
}

func (c *recordingCommand) Run(_ context.Context, cc *command.Context) (any, error) {
	c.ran = true
	c.args, c.flags = cc.Args, cc.Flags
	cc.Log.Info("hello", cc.Args["name"])
	return c.result, nil
}

func (c *recordingCommand) DryRun(_ context.Context, cc *command.Context) (any, error) {
	c.dryRan = true
	c.args, c.flags = cc.Args, cc.Flags
	return nil, nil
}

func (c *recordingCommand) Cleanup(context.Context, *command.Context) error {
	c.cleanedUp = true
	return nil
}

func helloDefinition(cmd *recordingCommand) command.Definition {
	return command.Definition{
		Description: "Say hello",
		New:         func() command.Command { return cmd },
		ArgsSchema:  schema.MustCompile(`{name?: string | *"world"}`),
	}
}

// Scenario 1: an optional arg falls back to its default; DryRun is not
// invoked and Cleanup is.
func TestRun_DefaultArg(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	cmd := &recordingCommand{}
	if err := h.rt.Register("hello", helloDefinition(cmd)); err != nil {
		t.Fatal(err)
	}

	if code := h.run(t, "hello"); code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	if !cmd.ran || cmd.dryRan || !cmd.cleanedUp {
		t.Errorf("ran=%v dryRan=%v cleanedUp=%v", cmd.ran, cmd.dryRan, cmd.cleanedUp)
	}
	if cmd.args["name"] != "world" {
		t.Errorf("name = %v, want world", cmd.args["name"])
	}

	want := []logsink.Entry{
		{Level: logsink.LevelInfo, Message: "Running hello"},
		{Level: logsink.LevelInfo, Message: "hello world"},
		{Level: logsink.LevelSuccess, Message: "hello completed"},
	}
	if diff := cmp.Diff(want, h.log.Entries()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_DryRunFlag(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	cmd := &recordingCommand{}
	if err := h.rt.Register("hello", helloDefinition(cmd)); err != nil {
		t.Fatal(err)
	}

	if code := h.run(t, "hello", "Ada", "--dry-run"); code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	if cmd.ran || !cmd.dryRan || !cmd.cleanedUp {
		t.Errorf("ran=%v dryRan=%v cleanedUp=%v", cmd.ran, cmd.dryRan, cmd.cleanedUp)
	}
	if cmd.args["name"] != "Ada" {
		t.Errorf("name = %v, want Ada", cmd.args["name"])
	}
	if _, ok := cmd.flags["dry-run"]; ok {
		t.Error("framework dry-run flag should not reach the command's flags")
	}
}

func TestRun_NumericResultIsExitCode(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.rt.Register("hello", helloDefinition(&recordingCommand{result: 4})); err != nil {
		t.Fatal(err)
	}
	if code := h.run(t, "hello"); code != 4 {
		t.Errorf("exit = %d, want 4", code)
	}
}

func sameAccount(ctx context.Context, vc *command.ValidateContext) command.ValidationResult {
	res := vc.RootValidate(ctx)
	if !res.Success {
		return res
	}
	if res.Data.Flags["from"] == res.Data.Flags["to"] {
		return command.Invalid(command.ValidationError{
			Path:    []string{"flags", "to"},
			Message: "cannot transfer to the same account",
			Code:    "SAME_ACCOUNT",
		})
	}
	return res
}

// Scenario 2: a custom validator rejects after the default validation
// passed, and Run never executes.
func TestRun_CustomValidatorRejects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	cmd := &recordingCommand{}
	err := h.rt.Register("transfer", command.Definition{
		New: func() command.Command { return cmd },
		FlagsSchema: schema.MustCompile(`{
			from:   string
			to:     string
			amount: int & >0
		}`),
		Validate: sameAccount,
	})
	if err != nil {
		t.Fatal(err)
	}

	code := h.run(t, "transfer", "--from", "A", "--to", "A", "--amount", "10")
	if code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	if cmd.ran {
		t.Error("Run must not execute after a validation failure")
	}

	want := []string{"Validation failed for transfer:", "  flags.to: cannot transfer to the same account"}
	if diff := cmp.Diff(want, h.log.Messages(logsink.LevelError)); diff != "" {
		t.Errorf("error lines mismatch (-want +got):\n%s", diff)
	}

	// Distinct accounts pass and the typed values reach Run.
	code = h.run(t, "transfer", "--from", "A", "--to", "B", "--amount", "10")
	if code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	if cmd.flags["amount"] != float64(10) {
		t.Errorf("amount = %#v, want 10", cmd.flags["amount"])
	}
}

func TestRun_SchemaErrorsAreListed(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	err := h.rt.Register("transfer", command.Definition{
		New:         func() command.Command { return &recordingCommand{} },
		FlagsSchema: schema.MustCompile(`{from: string, amount: int & >0}`),
	})
	if err != nil {
		t.Fatal(err)
	}

	if code := h.run(t, "transfer", "--amount", "-5"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	lines := h.log.Messages(logsink.LevelError)
	if len(lines) < 3 || lines[0] != "Validation failed for transfer:" {
		t.Fatalf("error lines = %q", lines)
	}
	joined := strings.Join(lines[1:], "\n")
	for _, path := range []string{"flags.from", "flags.amount"} {
		if !strings.Contains(joined, "  "+path+": ") {
			t.Errorf("missing error for %s in %q", path, joined)
		}
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.rt.Register("hello", command.Definition{
		New:         func() command.Command { return &recordingCommand{} },
		FlagsSchema: schema.MustCompile(`{loud?: bool}`),
	}); err != nil {
		t.Fatal(err)
	}

	if code := h.run(t, "hello", "--quiet"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !h.log.Contains(logsink.LevelError, "unknown flag: --quiet") {
		t.Errorf("log = %v", h.log.Entries())
	}
}

// Scenario 3: two filesystem sources defining the same key are fatal and
// the error names both files.
func TestRun_DuplicateKeys(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewFs(t, map[string]string{
		"/team-a/deploy.cue": `run: "echo a"`,
		"/team-b/deploy.cue": `run: "echo b"`,
	})
	h := newHarness(t, fsys, config.SourceEntry{Path: "/team-a"}, config.SourceEntry{Path: "/team-b"})

	if code := h.run(t, "deploy"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	lines := h.log.Messages(logsink.LevelError)
	if len(lines) != 1 {
		t.Fatalf("expected one error line, got %q", lines)
	}
	for _, path := range []string{"/team-a/deploy.cue", "/team-b/deploy.cue"} {
		if !strings.Contains(lines[0], path) {
			t.Errorf("error %q should name %s", lines[0], path)
		}
	}

	_, err := h.rt.Load(context.Background(), nil)
	if !errors.Is(err, commandtree.ErrDuplicateKey) {
		t.Errorf("Load() error = %v, want ErrDuplicateKey", err)
	}
}

// Scenario 4: an in-process command shadows a filesystem command with the
// same key, with a warning.
func TestRun_InProcessShadowsFilesystem(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewFs(t, map[string]string{
		"/commands/hello.cue": `run: "echo from-file"`,
	})
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})
	cmd := &recordingCommand{}
	if err := h.rt.Register("hello", helloDefinition(cmd)); err != nil {
		t.Fatal(err)
	}

	if code := h.run(t, "hello"); code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	if !cmd.ran {
		t.Error("the in-process command should run")
	}
	if strings.Contains(h.stdout.String(), "from-file") {
		t.Error("the shadowed file command must not run")
	}
	if !h.log.Contains(logsink.LevelWarn, `in-process command "hello" shadows /commands/hello.cue`) {
		t.Errorf("missing shadow warning, log = %v", h.log.Entries())
	}
}

func TestRun_FileCommand(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "greet", `
description: "Greet someone"
args: {
	name?: string | *"world"
}
flags: {
	loud?: bool
	tags?: [...string]
}
run: """
	echo "hello $ARG_NAME loud=$FLAG_LOUD tags=$FLAG_TAGS"
	"""
`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	if code := h.run(t, "greet", "Ada", "--loud", "--tags", "x", "--tags", "y"); code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	want := `hello Ada loud=true tags=["x","y"]`
	if got := strings.TrimSpace(h.stdout.String()); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRun_UnknownCommandSuggests(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "scaffold/cloud/aws", `run: "echo aws"`)
	testutil.WriteCommandFile(t, fsys, "/commands", "scaffold/cloud/gcp", `run: "echo gcp"`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	if code := h.run(t, "scaffold/cloud/az"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	want := []logsink.Entry{
		{Level: logsink.LevelError, Message: "Unknown command: scaffold/cloud/az"},
		{Level: logsink.LevelInfo, Message: "Did you mean: scaffold/cloud/aws?"},
	}
	if diff := cmp.Diff(want, h.log.Entries()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_UnknownCommandWithoutSuggestion(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.rt.Register("hello", helloDefinition(&recordingCommand{})); err != nil {
		t.Fatal(err)
	}
	if code := h.run(t, "completely-different"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	if len(h.log.Messages(logsink.LevelInfo)) != 0 {
		t.Errorf("no suggestion expected, log = %v", h.log.Entries())
	}
}

func TestRun_GroupListing(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "scaffold/cloud/aws", `
description: "Scaffold an AWS project"
run: "echo aws"
`)
	testutil.WriteCommandFile(t, fsys, "/commands", "scaffold/web", `run: "echo web"`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	if code := h.run(t, "scaffold"); code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	out := h.stdout.String()
	for _, want := range []string{"Commands in scaffold:", "cloud/", "web"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}

	h.stdout.Reset()
	if code := h.run(t, "scaffold", "cloud"); code != types.ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(h.stdout.String(), "Scaffold an AWS project") {
		t.Errorf("listing should show lazily loaded descriptions:\n%s", h.stdout.String())
	}
}

func TestRun_RootListingAndHelp(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	cmd := &recordingCommand{}
	if err := h.rt.Register("hello", helloDefinition(cmd)); err != nil {
		t.Fatal(err)
	}

	if code := h.run(t); code != types.ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if out := h.stdout.String(); !strings.Contains(out, "Available commands:") || !strings.Contains(out, "Say hello") {
		t.Errorf("root listing:\n%s", out)
	}

	h.stdout.Reset()
	if code := h.run(t, "hello", "--help"); code != types.ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if cmd.ran {
		t.Error("help must not run the command")
	}
	if out := h.stdout.String(); !strings.Contains(out, "Usage:") || !strings.Contains(out, "name") {
		t.Errorf("usage output:\n%s", out)
	}
}

func TestRun_ConfigFlagIsStripped(t *testing.T) {
	t.Parallel()

	fsys := testutil.NewFs(t, map[string]string{
		"/cfg/cmdkit.cue": `sources: [{path: "/cmds", root: "team"}]`,
		"/cmds/hello.cue": `run: "echo team hello"`,
	})
	stdout := &bytes.Buffer{}
	rt := New(WithFs(fsys), WithOutput(stdout, &bytes.Buffer{}), WithLog(&logsink.Recorder{}), WithDiagnostics(logsink.Discard()))

	if code := rt.Run(context.Background(), []string{"--config", "/cfg/cmdkit.cue", "team/hello"}); code != types.ExitSuccess {
		t.Fatalf("exit = %d", code)
	}
	if strings.TrimSpace(stdout.String()) != "team hello" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRun_InvokeSubcommand(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "build", `
args: {target?: string | *"all"}
run: "echo built $ARG_TARGET"
`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	var code int
	err := h.rt.Register("release", command.Definition{
		New: func() command.Command {
			return configured{
				configure: func(cc *command.Context) { cc.AddCommand("build", "build") },
				run: func(ctx context.Context, cc *command.Context) (any, error) {
					var err error
					code, err = cc.Commands["build"](ctx, "linux")
					return code, err
				},
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if exit := h.run(t, "release"); exit != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", exit, h.log.Entries())
	}
	if code != 0 || strings.TrimSpace(h.stdout.String()) != "built linux" {
		t.Errorf("code = %d stdout = %q", code, h.stdout.String())
	}
	if !h.log.Contains(logsink.LevelInfo, "Running build") {
		t.Error("the invoked command should run through the full lifecycle")
	}
}

type configured struct {
	configure func(cc *command.Context)
	run       func(ctx context.Context, cc *command.Context) (any, error)
}

func (c configured) ConfigureContext(_ context.Context, cc *command.Context) error {
	c.configure(cc)
	return nil
}

func (c configured) Run(ctx context.Context, cc *command.Context) (any, error) { return c.run(ctx, cc) }

// Scenario 1 for a command file: the args default reaches the script, the
// dry-run script is not used and cleanup runs.
func TestRun_FileCommandDefaultArg(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "hello", `
args: {
	name?: string | *"world"
}
run:     "echo hello $ARG_NAME"
dryRun:  "echo dry"
cleanup: "echo bye"
`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	if code := h.run(t, "hello"); code != types.ExitSuccess {
		t.Fatalf("exit = %d, log = %v", code, h.log.Entries())
	}
	if diff := cmp.Diff("hello world\nbye\n", h.stdout.String()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FileCommandListsEveryError(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "transfer", `
flags: {
	from:   string
	to:     string
	amount: int & >0
}
run: "echo moved"
`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	if code := h.run(t, "transfer", "--from", "A", "--amount", "-5"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	lines := h.log.Messages(logsink.LevelError)
	if len(lines) != 3 {
		t.Fatalf("error lines = %q, want a header and two errors", lines)
	}
	if lines[0] != "Validation failed for transfer:" || lines[1] != "  flags.to: required" ||
		!strings.HasPrefix(lines[2], "  flags.amount: ") {
		t.Errorf("error lines = %q", lines)
	}
	if h.stdout.Len() != 0 {
		t.Errorf("Run should not start, stdout = %q", h.stdout.String())
	}
}

func TestRun_InvalidCommandFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	testutil.WriteCommandFile(t, fsys, "/commands", "broken", `description: "no run script"`)
	testutil.WriteCommandFile(t, fsys, "/commands", "ok", `run: "true"`)
	h := newHarness(t, fsys, config.SourceEntry{Path: "/commands"})

	if code := h.run(t, "broken"); code != types.ExitFailure {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !h.log.Contains(logsink.LevelError, "/commands/broken.cue") {
		t.Errorf("error should name the file, log = %v", h.log.Entries())
	}

	s, err := h.rt.Load(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	errs := s.Check()
	if len(errs) != 1 || !errors.Is(errs[0], commandtree.ErrMissingBuilder) {
		t.Errorf("Check() = %v, want one missing-builder error", errs)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nil)
	if err := h.rt.Register("x", command.Definition{}); !errors.Is(err, commandtree.ErrMissingBuilder) {
		t.Errorf("Register without New = %v, want ErrMissingBuilder", err)
	}
	if err := h.rt.Register("", helloDefinition(&recordingCommand{})); err == nil {
		t.Error("Register with an empty key should fail")
	}
	if err := h.rt.Register("hello", helloDefinition(&recordingCommand{})); err != nil {
		t.Fatal(err)
	}

	h.run(t, "hello")

	if !h.rt.Registry().Sealed() {
		t.Fatal("registry should be sealed after the first run")
	}
	if err := h.rt.Register("late", helloDefinition(&recordingCommand{})); !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("late Register = %v, want ErrRegistrySealed", err)
	}
}
