package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSeedCommandReportsImportedQuizzes(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "seeds.yaml")
	doc := `quizzes:
  - title: Capitals
    questions:
      - text: Capital of France?
        type: single_select
        choices:
          - { text: Paris, valid: true }
          - { text: Lyon, valid: false }
  - title: Invalid
    questions:
      - text: Two right answers
        type: single_select
        choices:
          - { text: a, valid: true }
          - { text: b, valid: true }
`
	if err := os.WriteFile(file, []byte(doc), 0o600); err != nil {
		t.Fatalf("write seeds: %v", err)
	}
	t.Setenv("POSTGRES_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"seed", "--config", filepath.Join(dir, "missing.yaml"), "--file", file})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("seed command: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Capitals\t1 questions") {
		t.Fatalf("expected Capitals to be imported, got %q", got)
	}
	if strings.Contains(got, "Invalid") {
		t.Fatalf("invalid quiz should be skipped, got %q", got)
	}
}

func TestSeedCommandRequiresASource(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SEED_FILE", "")
	t.Setenv("POSTGRES_URL", "")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"seed", "--config", filepath.Join(dir, "missing.yaml")})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected an error without a seed source")
	}
}
