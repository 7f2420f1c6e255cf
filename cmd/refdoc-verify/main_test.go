package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeRunner struct {
	out   map[string]string
	fail  map[string]error
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, argv []string, _ []byte) ([]byte, error) {
	f.calls = append(f.calls, argv[0])
	if err := f.fail[argv[0]]; err != nil {
		return nil, err
	}
	return []byte(f.out[argv[0]]), nil
}

type memExporter struct {
	files map[string]string
}

func (m *memExporter) Write(path string, data []byte) error {
	if m.files == nil {
		m.files = map[string]string{}
	}
	m.files[path] = string(data)
	return nil
}

func newRunner(formatted, actual string) *fakeRunner {
	return &fakeRunner{out: map[string]string{"curl": ".TH TREE 1\n", "groff": formatted, "zig": actual}}
}

func TestRunMatchExitsZero(t *testing.T) {
	r := newRunner("NAME\n  tree\n", "NAME\n  tree\n")
	ex := &memExporter{}
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--quiet"}, &out, &errOut, deps{runner: r, exporter: ex})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%q", code, errOut.String())
	}
	if !strings.Contains(out.String(), "PASS") {
		t.Fatalf("missing pass banner: %q", out.String())
	}
	if ex.files["/tmp/expected_man.txt"] != "NAME\n  tree\n" || ex.files["/tmp/actual_man.txt"] != "NAME\n  tree\n" {
		t.Fatalf("unexpected exports: %v", ex.files)
	}
	if strings.Join(r.calls, ",") != "curl,groff,zig" {
		t.Fatalf("unexpected call order: %v", r.calls)
	}
}

func TestRunMismatchExitsOne(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-q"}, &out, &errOut, deps{runner: newRunner("abcd", "abXd"), exporter: &memExporter{}})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	got := out.String()
	for _, want := range []string{"FAIL", "first difference at byte 2", "/tmp/expected_man.txt", "run: diff"} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestRunLengthMismatchExitsOne(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-q"}, &out, &errOut, deps{runner: newRunner("one\ntwo\nthree\n", "one\ntwo\n"), exporter: &memExporter{}})
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out.String(), "length differs by 6 bytes") {
		t.Fatalf("missing length message:\n%s", out.String())
	}
}

func TestRunCommandFailure(t *testing.T) {
	r := newRunner("x", "x")
	r.fail = map[string]error{"groff": errors.New("exit status 2: groff: can't open file")}
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-q"}, &out, &errOut, deps{runner: r, exporter: &memExporter{}})
	if code != 3 {
		t.Fatalf("expected exit 3, got %d", code)
	}
	if out.Len() != 0 {
		t.Fatalf("no report expected on abort, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "can't open file") {
		t.Fatalf("stderr missing command diagnostic: %q", errOut.String())
	}
	if strings.Join(r.calls, ",") != "curl,groff" {
		t.Fatalf("run continued past failure: %v", r.calls)
	}
}

func TestRunJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--json", "-q"}, &out, &errOut, deps{runner: newRunner("a", "a"), exporter: &memExporter{}})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%q", code, errOut.String())
	}
	var doc map[string]any
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json %q: %v", out.String(), err)
	}
	if doc["outcome"] != "match" || doc["mode"] != "verify" {
		t.Fatalf("unexpected summary: %v", doc)
	}
}

func TestRunConfigPaths(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	body := "verify_paths:\n  source: " + dir + "/s.1\n  expected: " + dir + "/e.txt\n  actual: " + dir + "/a.txt\n"
	if err := os.WriteFile(profile, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	ex := &memExporter{}
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-q", "--config", profile}, &out, &errOut, deps{runner: newRunner("a", "a"), exporter: ex})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d stderr=%q", code, errOut.String())
	}
	if _, ok := ex.files[filepath.Join(dir, "e.txt")]; !ok {
		t.Fatalf("profile paths not used: %v", ex.files)
	}
}

func TestRunBadConfig(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, &out, &errOut, deps{runner: newRunner("", ""), exporter: &memExporter{}})
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
}

func TestRunHelp(t *testing.T) {
	r := newRunner("", "")
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--help"}, &out, &errOut, deps{runner: r})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(out.String(), "--config") {
		t.Fatalf("help missing options: %q", out.String())
	}
	if len(r.calls) != 0 {
		t.Fatalf("expected no command invocations, got %v", r.calls)
	}
}

func TestRunUnknownArgument(t *testing.T) {
	r := newRunner("", "")
	for _, args := range [][]string{{"--nope"}, {"extra"}} {
		var out, errOut bytes.Buffer
		code := run(context.Background(), args, &out, &errOut, deps{runner: r})
		if code != 2 {
			t.Fatalf("%v: expected exit 2, got %d", args, code)
		}
	}
	if len(r.calls) != 0 {
		t.Fatalf("expected no command invocations, got %v", r.calls)
	}
}
