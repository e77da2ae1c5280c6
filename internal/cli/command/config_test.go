package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/medrec/internal/config"
)

func TestConfigShow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("config", "show")
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("config show is not YAML: %v\n%s", err, out)
	}
	if cfg.Storage.DataDir != h.data {
		t.Errorf("data_dir = %q, want %q", cfg.Storage.DataDir, h.data)
	}
	if cfg.Backup.Driver != "file" {
		t.Errorf("backup.driver = %q", cfg.Backup.Driver)
	}
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	h := newHarness(t)
	t.Setenv("MEDREC_SECURITY_ENCRYPTION_KEY", "correct horse battery staple")

	out := h.mustRun("--archive-dir", filepath.Join(h.home, "arc"), "config", "show")
	if strings.Contains(out, "horse") {
		t.Errorf("secret leaked:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.home, "conf", "medrec.yaml")

	out := h.mustRun("--config", path, "config", "init")
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", st.Mode().Perm())
	}

	if res := h.run("", "--config", path, "config", "init"); res.err == nil {
		t.Error("second init should refuse to overwrite")
	}
	h.mustRun("--config", path, "config", "init", "--force")

	if out := h.mustRun("--config", path, "config", "path"); out != path+"\n" {
		t.Errorf("config path = %q", out)
	}
}

func TestConfigPath_Default(t *testing.T) {
	h := newHarness(t)
	want := filepath.Join(h.home, ".medrec", "medrec.yaml")
	if out := h.mustRun("config", "path"); out != want+"\n" {
		t.Errorf("config path = %q, want %q", out, want)
	}
}
