package cmake

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type call struct {
	dir  string
	env  []string
	name string
	args []string
}

type recorder struct {
	calls []call
}

func (r *recorder) Run(ctx context.Context, dir string, env []string, name string, args ...string) error {
	r.calls = append(r.calls, call{dir: dir, env: env, name: name, args: args})
	return nil
}

func TestConfigureArgs(t *testing.T) {
	tests := []struct {
		name      string
		generator string
		extra     []string
		want      string
	}{
		{"default generator", "", []string{"-DPYTHON_EXECUTABLE=/usr/bin/python3"}, ".. -DPYTHON_EXECUTABLE=/usr/bin/python3"},
		{"ninja", Ninja, []string{"-DPYTHON_EXECUTABLE=/usr/bin/python3"}, "-G Ninja .. -DPYTHON_EXECUTABLE=/usr/bin/python3"},
		{"no extra", "", nil, ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("build", &recorder{}).Generator(tt.generator)
			if got := strings.Join(c.ConfigureArgs(tt.extra...), " "); got != tt.want {
				t.Errorf("ConfigureArgs = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigureRunsInBuildDir(t *testing.T) {
	buildDir := filepath.Join(t.TempDir(), "build")
	rec := &recorder{}
	c := New(buildDir, rec)
	if err := c.Configure(context.Background(), "-DFOO=1"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if _, err := os.Stat(buildDir); err != nil {
		t.Fatalf("build dir not created: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(rec.calls))
	}
	got := rec.calls[0]
	if got.dir != buildDir || got.name != "cmake" {
		t.Errorf("call = %+v, want cmake in %s", got, buildDir)
	}
	if got.env != nil {
		t.Errorf("env = %v, want nil when no overrides", got.env)
	}
}

func TestBuildCommand(t *testing.T) {
	t.Setenv("MAKE", "")
	wantMake := "make"
	if runtime.GOOS == "freebsd" {
		wantMake = "gmake"
	}

	tests := []struct {
		name      string
		generator string
		jobs      int
		install   bool
		wantName  string
		wantArgs  string
	}{
		{"make with jobs", "", 2, true, wantMake, "-j2 install"},
		{"make serial", "", 0, true, wantMake, "install"},
		{"make no install", "", 4, false, wantMake, "-j4"},
		{"ninja ignores jobs", Ninja, 8, true, "ninja", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("build", nil).Generator(tt.generator).Jobs(tt.jobs).InstallTarget(tt.install)
			name, args := c.BuildCommand()
			if name != tt.wantName {
				t.Errorf("program = %q, want %q", name, tt.wantName)
			}
			if got := strings.Join(args, " "); got != tt.wantArgs {
				t.Errorf("args = %q, want %q", got, tt.wantArgs)
			}
		})
	}
}

func TestBuildHonoursMakeEnv(t *testing.T) {
	t.Setenv("MAKE", "/opt/bin/gmake")
	name, _ := New("build", nil).BuildCommand()
	if name != "/opt/bin/gmake" {
		t.Errorf("program = %q, want %q", name, "/opt/bin/gmake")
	}
}

func TestEnvDoesNotLeak(t *testing.T) {
	t.Setenv("EXTBUILD_CMAKE_TEST", "outer")
	rec := &recorder{}
	c := New(t.TempDir(), rec)
	c.Env("EXTBUILD_CMAKE_TEST", "inner")
	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := os.Getenv("EXTBUILD_CMAKE_TEST"); got != "outer" {
		t.Errorf("process env = %q, want %q", got, "outer")
	}
	found := false
	for _, kv := range rec.calls[0].env {
		if kv == "EXTBUILD_CMAKE_TEST=inner" {
			found = true
		}
	}
	if !found {
		t.Errorf("child env missing override: %v", rec.calls[0].env)
	}
}

func TestOutputDir(t *testing.T) {
	if got := New("build", nil).OutputDir(); got != "build" {
		t.Errorf("OutputDir = %q, want %q", got, "build")
	}
	if got := New("build", nil).OutputTo("build/lib").OutputDir(); got != "build/lib" {
		t.Errorf("OutputDir = %q, want %q", got, "build/lib")
	}
}

func TestDefinesArgs(t *testing.T) {
	c := New("", nil)
	c.Define("FOO", "BAR")
	c.Define("ENABLE_TESTS", "OFF")
	c.Define("FOO", "BAZ")

	got := strings.Join(c.definesArgs(), " ")
	if want := "-DENABLE_TESTS=OFF -DFOO=BAZ"; got != want {
		t.Errorf("definesArgs = %q, want %q", got, want)
	}
	if args := New("", nil).definesArgs(); args != nil {
		t.Errorf("definesArgs on empty = %v, want nil", args)
	}
}

func TestBuildTypeDefine(t *testing.T) {
	c := New("build", nil).BuildType("Release")
	got := strings.Join(c.ConfigureArgs(), " ")
	if want := ".. -DCMAKE_BUILD_TYPE=Release"; got != want {
		t.Errorf("ConfigureArgs = %q, want %q", got, want)
	}
}

func TestSource(t *testing.T) {
	c := New("out/build", nil)
	c.Source("../..")
	got := strings.Join(c.ConfigureArgs("-DX=1"), " ")
	if want := "../.. -DX=1"; got != want {
		t.Errorf("ConfigureArgs = %q, want %q", got, want)
	}
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv([]string{"B=1", "A=2", "PATH=/bin"}, map[string]string{"A": "3", "C": "4"})
	if want := "B=1 PATH=/bin A=3 C=4"; strings.Join(got, " ") != want {
		t.Errorf("mergeEnv = %v, want %s", got, want)
	}
}

func TestConfigureBuildE2E(t *testing.T) {
	for _, tool := range []string{"cmake", "make", "cc"} {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not found in PATH", tool)
		}
	}

	src := t.TempDir()
	lists := "cmake_minimum_required(VERSION 3.10)\nproject(dummy C)\nadd_library(dummy STATIC dummy.c)\ninstall(TARGETS dummy DESTINATION ${CMAKE_CURRENT_SOURCE_DIR}/build/lib)\n"
	if err := os.WriteFile(filepath.Join(src, "CMakeLists.txt"), []byte(lists), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "dummy.c"), []byte("int dummy(void) { return 1; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	buildDir := filepath.Join(src, "build")
	c := New(buildDir, nil).Jobs(2)
	ctx := context.Background()
	if err := c.Configure(ctx); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := c.Build(ctx); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(buildDir, "lib", "libdummy.a")); err != nil {
		t.Errorf("missing installed library: %v", err)
	}
}
