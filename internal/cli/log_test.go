package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

var runIDPattern = regexp.MustCompile(`run=([0-9a-f-]{8})`)

func TestSetup_TagsLogLinesWithRunID(t *testing.T) {
	root := fixture(t, acyclic)

	_, first, err := run(t, "-C", root, "--no-cache", "order")
	if err != nil {
		t.Fatalf("order error: %v", err)
	}
	_, second, err := run(t, "-C", root, "--no-cache", "order")
	if err != nil {
		t.Fatalf("order error: %v", err)
	}

	ids := runIDPattern.FindAllStringSubmatch(first, -1)
	if len(ids) < 2 {
		t.Fatalf("log = %q, want run ids on the load and build lines", first)
	}
	for _, m := range ids[1:] {
		if m[1] != ids[0][1] {
			t.Errorf("run ids %s and %s differ within one invocation", ids[0][1], m[1])
		}
	}
	other := runIDPattern.FindStringSubmatch(second)
	if other == nil || other[1] == ids[0][1] {
		t.Errorf("second invocation run id = %v, want a new id", other)
	}
}

func TestSetup_LogsDiagnosticsAsWarnings(t *testing.T) {
	root := fixture(t, map[string]string{
		"pnpm-workspace.yaml":          "packages:\n  - 'packages/*'\n",
		"packages/loop/package.json":   `{"name": "loop", "dependencies": {"loop": "*"}}`,
		"packages/broken/package.json": `{"name": `,
	})

	_, errlog, err := run(t, "-C", root, "--no-cache", "order")
	if err != nil {
		t.Fatalf("order error: %v", err)
	}
	for _, want := range []string{"WARN", "kind=self-dependency", "package=loop", "kind=unreadable-record"} {
		if !strings.Contains(errlog, want) {
			t.Errorf("log missing %q:\n%s", want, errlog)
		}
	}
	if !runIDPattern.MatchString(errlog) {
		t.Errorf("diagnostic warnings should carry the run id:\n%s", errlog)
	}
}

func TestSetup_VerboseEnablesDebug(t *testing.T) {
	root := fixture(t, acyclic)

	_, quiet, err := run(t, "-C", root, "--no-cache", "cycles")
	if err != nil {
		t.Fatal(err)
	}
	_, verbose, err := run(t, "-C", root, "--no-cache", "-v", "cycles")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(quiet, "loaded config") {
		t.Errorf("debug line logged without --verbose:\n%s", quiet)
	}
	if !strings.Contains(verbose, "loaded config") || !strings.Contains(verbose, "backend=file") {
		t.Errorf("--verbose log missing the config debug line:\n%s", verbose)
	}
}

func TestProgress_Done(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Loaded 4 packages")

	if !regexp.MustCompile(`Loaded 4 packages \(\d+(\.\d+)?m?s\)`).MatchString(buf.String()) {
		t.Errorf("done() = %q, want message with elapsed time", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should fall back to log.Default()")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel).With("run", "abcd1234")
	loggerFromContext(withLogger(context.Background(), l)).Info("hello")
	if !strings.Contains(buf.String(), "run=abcd1234") {
		t.Errorf("context logger output = %q, want run field", buf.String())
	}
}

func TestNewRunID(t *testing.T) {
	a, b := newRunID(), newRunID()
	if len(a) != 8 {
		t.Errorf("newRunID() = %q, want 8 characters", a)
	}
	if a == b {
		t.Errorf("newRunID() repeated %q", a)
	}
}
