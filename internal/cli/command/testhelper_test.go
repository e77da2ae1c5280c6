package command

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// harness runs the app against a private home and data directory.
type harness struct {
	t    *testing.T
	home string
	data string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return &harness{
		t:    t,
		home: home,
		data: filepath.Join(home, "data"),
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes medrec with the harness data dir and the given stdin.
func (h *harness) run(stdin string, args ...string) result {
	h.t.Helper()

	app := App()
	var stdout, stderr bytes.Buffer
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := append([]string{"medrec", "--data-dir", h.data}, args...)
	err := app.RunContext(context.Background(), full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun fails the test when the command returns an error.
func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	res := h.run("", args...)
	if res.err != nil {
		h.t.Fatalf("medrec %s: %v\nstderr: %s", strings.Join(args, " "), res.err, res.stderr)
	}
	return res.stdout
}

// decode unmarshals JSON command output into v.
func (h *harness) decode(out string, v any) {
	h.t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		h.t.Fatalf("decode %q: %v", out, err)
	}
}

func (h *harness) admit(id, name, age, room string) {
	h.t.Helper()
	h.mustRun("patient", "add", "--id", id, "--name", name, "--age", age, "--diagnosis", "Flu", "--room", room)
}
