package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// newTestRoot creates a fresh cobra root command wired to all subcommands.
// Each test gets an isolated command tree to avoid shared state.
func newTestRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "mofmaster",
		SilenceUsage: true,
	}
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewToolsCmd())
	return root
}

// executeCommand runs a cobra command with the given args and captures stdout/stderr.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// writeTestFile creates a temporary file with the given content and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestToolsListsDefaultSet(t *testing.T) {
	_, stderr, err := executeCommand(newTestRoot(), "tools")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	if !strings.Contains(stderr, "Registered 4 tools:") {
		t.Fatalf("missing tool count header:\n%s", stderr)
	}
	for _, want := range []string{
		"- search_mofs (search)",
		"- parse_structure (utils)",
		"- static_calculation (calculation)",
		"- optimize_geometry (calculation)",
		"calculation: 2 tool(s)",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("listing missing %q:\n%s", want, stderr)
		}
	}
}

func TestToolsWithDefinitionsFile(t *testing.T) {
	path := writeTestFile(t, "tools.yaml", `
tools:
  - name: search_mofs
    description: Search the MOF catalog.
    category: search
    function_name: search_mofs
`)
	_, stderr, err := executeCommand(newTestRoot(), "tools", "--definitions", path)
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	if !strings.Contains(stderr, "Registered 1 tools:") {
		t.Fatalf("expected single tool listing:\n%s", stderr)
	}
}

func TestToolsMissingDefinitionsFile(t *testing.T) {
	_, _, err := executeCommand(newTestRoot(), "tools", "--definitions", filepath.Join(t.TempDir(), "absent.yaml"))
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != exitFileNotFound {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, exitFileNotFound)
	}
}

func TestToolsBadDefinitions(t *testing.T) {
	path := writeTestFile(t, "tools.yaml", `
tools:
  - name: search_mofs
    description: Search the MOF catalog.
    category: search
    function_name: no_such_function
`)
	_, _, err := executeCommand(newTestRoot(), "tools", "--definitions", path)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != exitValidation {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, exitValidation)
	}
}

func TestServeRejectsBadCron(t *testing.T) {
	_, _, err := executeCommand(newTestRoot(), "serve", "--health-cron", "not a cron")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != exitValidation {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, exitValidation)
	}
}

func TestBuildEvaluatorDefaultsToLennardJones(t *testing.T) {
	eval, checker, err := buildEvaluator("")
	if err != nil {
		t.Fatal(err)
	}
	if eval == nil || checker == nil {
		t.Fatal("expected built-in evaluator")
	}
}

func TestBuildEvaluatorRemote(t *testing.T) {
	eval, checker, err := buildEvaluator("http://dpa-service:8100")
	if err != nil {
		t.Fatal(err)
	}
	if eval == nil || checker == nil {
		t.Fatal("expected remote evaluator")
	}
}

func TestBuildCatalogStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	store, closeStore, err := buildCatalogStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()
	records, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("expected seeded catalog records")
	}
}
