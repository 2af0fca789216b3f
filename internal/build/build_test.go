package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goplus/extbuild/internal/backend"
)

// fakeRunner records command lines and fails the call named failOn.
type fakeRunner struct {
	calls  []string
	dirs   []string
	failOn string
}

var errExit = errors.New("exit status 2")

func (r *fakeRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	r.calls = append(r.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	r.dirs = append(r.dirs, dir)
	if name == r.failOn {
		return errExit
	}
	return nil
}

func getwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	return wd
}

func newPlan(t *testing.T, choice backend.Choice) Plan {
	buildDir := filepath.Join(t.TempDir(), "src", "build")
	return Plan{
		BuildDir:   buildDir,
		LibDir:     filepath.Join(buildDir, "lib"),
		ConfigArgs: []string{"-DPYTHON_EXECUTABLE=/usr/bin/python3"},
		Backend:    choice,
		Jobs:       2,
	}
}

func TestRunSequential(t *testing.T) {
	t.Setenv("MAKE", "")
	plan := newPlan(t, backend.Sequential)
	r := &fakeRunner{}
	if err := (&Executor{Runner: r}).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"cmake .. -DPYTHON_EXECUTABLE=/usr/bin/python3",
		"make -j2 install",
	}
	if strings.Join(r.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls = %q, want %q", r.calls, want)
	}
	for _, dir := range r.dirs {
		if dir != plan.BuildDir {
			t.Errorf("command ran in %q, want %q", dir, plan.BuildDir)
		}
	}
	if _, err := os.Stat(plan.LibDir); err != nil {
		t.Errorf("lib dir not prepared: %v", err)
	}
	rec, err := loadRecord(plan.BuildDir)
	if err != nil {
		t.Fatalf("loadRecord: %v", err)
	}
	if rec.Backend != "make" || rec.Generator != "" || len(rec.ConfigArgs) != 1 {
		t.Errorf("record = %+v", rec)
	}
}

func TestRunParallel(t *testing.T) {
	plan := newPlan(t, backend.Parallel)
	r := &fakeRunner{}
	if err := (&Executor{Runner: r}).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"cmake -G Ninja .. -DPYTHON_EXECUTABLE=/usr/bin/python3",
		"ninja",
	}
	if strings.Join(r.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls = %q, want %q", r.calls, want)
	}
}

func TestRunNestedBuildDir(t *testing.T) {
	t.Setenv("MAKE", "")
	src := filepath.Join(t.TempDir(), "src")
	plan := Plan{
		SourceDir:  src,
		BuildDir:   filepath.Join(src, "out", "build"),
		ConfigArgs: []string{"-DPYTHON_EXECUTABLE=/usr/bin/python3"},
		Backend:    backend.Sequential,
	}
	r := &fakeRunner{}
	if err := (&Executor{Runner: r}).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := "cmake ../.. -DPYTHON_EXECUTABLE=/usr/bin/python3"; r.calls[0] != want {
		t.Errorf("configure = %q, want %q", r.calls[0], want)
	}
	if got := filepath.Clean(filepath.Join(r.dirs[0], "../..")); got != src {
		t.Errorf("source resolves to %q, want %q", got, src)
	}
}

func TestRunProjectSettings(t *testing.T) {
	t.Setenv("MAKE", "")
	plan := newPlan(t, backend.Sequential)
	plan.SourceDir = filepath.Dir(plan.BuildDir)
	plan.NoInstall = true
	plan.BuildType = "Release"
	plan.Defines = map[string]string{"RDK_BUILD_CPP_TESTS": "OFF"}
	plan.Env = map[string]string{"EXTBUILD_BUILD_TEST": "1"}

	r := &envRunner{}
	if err := (&Executor{Runner: r}).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"cmake .. -DCMAKE_BUILD_TYPE=Release -DRDK_BUILD_CPP_TESTS=OFF -DPYTHON_EXECUTABLE=/usr/bin/python3",
		"make -j2",
	}
	if strings.Join(r.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls = %q, want %q", r.calls, want)
	}
	for i, env := range r.envs {
		if !slices.Contains(env, "EXTBUILD_BUILD_TEST=1") {
			t.Errorf("call %d env missing override", i)
		}
	}
	if os.Getenv("EXTBUILD_BUILD_TEST") != "" {
		t.Error("override leaked into the process environment")
	}
	rec, err := loadRecord(plan.BuildDir)
	if err != nil || rec.OutputDir != plan.LibDir {
		t.Errorf("record = %+v, %v, want output dir %s", rec, err, plan.LibDir)
	}
}

// envRunner is a fakeRunner that also keeps the child environments.
type envRunner struct {
	fakeRunner
	envs [][]string
}

func (r *envRunner) Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	r.envs = append(r.envs, env)
	return r.fakeRunner.Run(ctx, dir, env, name, args...)
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name      string
		choice    backend.Choice
		failOn    string
		wantErr   error
		wantCalls int
	}{
		{"configure fails", backend.Parallel, "cmake", ErrConfigure, 1},
		{"ninja fails", backend.Parallel, "ninja", ErrBuild, 2},
		{"make fails", backend.Sequential, "make", ErrBuild, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAKE", "")
			before := getwd(t)
			plan := newPlan(t, tt.choice)
			r := &fakeRunner{failOn: tt.failOn}

			err := (&Executor{Runner: r}).Run(context.Background(), plan)
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, errExit) {
				t.Errorf("Run = %v, want %v wrapping %v", err, tt.wantErr, errExit)
			}
			if len(r.calls) != tt.wantCalls {
				t.Errorf("got %d calls %q, want %d", len(r.calls), r.calls, tt.wantCalls)
			}
			if after := getwd(t); after != before {
				t.Errorf("working directory changed: %q -> %q", before, after)
			}
			if _, err := loadRecord(plan.BuildDir); err == nil {
				t.Error("failed build left a build record")
			}
		})
	}
}

func TestRunKeepsWorkingDirectory(t *testing.T) {
	before := getwd(t)
	plan := newPlan(t, backend.Sequential)
	if err := (&Executor{Runner: &fakeRunner{}}).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if after := getwd(t); after != before {
		t.Errorf("working directory changed: %q -> %q", before, after)
	}
}

func TestRunResetsGeneratorOnSwitch(t *testing.T) {
	plan := newPlan(t, backend.Sequential)
	e := &Executor{Runner: &fakeRunner{}}
	if err := e.Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cache := filepath.Join(plan.BuildDir, "CMakeCache.txt")
	files := filepath.Join(plan.BuildDir, "CMakeFiles")
	if err := os.WriteFile(cache, []byte("CMAKE_GENERATOR:INTERNAL=Unix Makefiles\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(files, 0o755); err != nil {
		t.Fatal(err)
	}

	// Same backend again: cache survives.
	if err := e.Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("cache removed on rebuild with same backend: %v", err)
	}

	plan.Backend = backend.Parallel
	if err := e.Run(context.Background(), plan); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, p := range []string{cache, files} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s survived generator switch", p)
		}
	}
	rec, err := loadRecord(plan.BuildDir)
	if err != nil || rec.Generator != "Ninja" {
		t.Errorf("record after switch = %+v, %v", rec, err)
	}
}

func TestPreviousGeneratorFromCMakeCache(t *testing.T) {
	dir := t.TempDir()
	if _, ok := previousGenerator(dir); ok {
		t.Fatal("previousGenerator on empty dir reported a generator")
	}
	content := "# This is the CMakeCache file.\nCMAKE_BUILD_TYPE:STRING=\nCMAKE_GENERATOR:INTERNAL=Ninja\n"
	if err := os.WriteFile(filepath.Join(dir, "CMakeCache.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if g, ok := previousGenerator(dir); !ok || g != "Ninja" {
		t.Errorf("previousGenerator = %q, %v, want Ninja", g, ok)
	}
}

func TestPrepareIdempotent(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	libDir := filepath.Join(buildDir, "lib")
	for i := 0; i < 2; i++ {
		if err := Prepare(buildDir, libDir); err != nil {
			t.Fatalf("Prepare #%d: %v", i+1, err)
		}
	}
	if fi, err := os.Stat(libDir); err != nil || !fi.IsDir() {
		t.Errorf("lib dir = %v, %v", fi, err)
	}
}

func TestPrepareFileInTheWay(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "build")
	if err := os.WriteFile(buildDir, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Prepare(buildDir, filepath.Join(buildDir, "lib")); err == nil {
		t.Error("Prepare over a regular file succeeded, want error")
	}
}

func TestLoadRecordInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, recordFile), []byte("invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadRecord(dir); err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}
