package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iron-coder/ironcoder/internal/policy"
)

const featherManifest = `name = "Feather RP2040"
manufacturer = "Adafruit"
is_main_board = true
standard = "Feather"
cpu = "Cortex-M0+"
bsp = "feather_rp2040"

[[pinout]]
pins = [2, 3]
interface = { type = "I2C", direction = "bidirectional" }
`

const featherBSP = `pub type I2CBus = u32;

pub struct Board<I2C> {
    pub i2c: I2C,
}
`

const oledManifest = `name = "OLED Featherwing"
manufacturer = "Adafruit"
bsp = "oled-featherwing"
`

const oledBSP = `pub struct Board {
    display: u8,
}
`

const wantModule = `use feather_rp2040;
use oled_featherwing;

pub struct System {
    pub feather_rp2040: feather_rp2040::Board<feather_rp2040::I2CBus>,
    pub oled_featherwing: oled_featherwing::Board,
}

impl System {
    pub fn new() -> Self {
        Self {
            feather_rp2040: feather_rp2040::Board::new(),
            oled_featherwing: oled_featherwing::Board::new(),
        }
    }
}
`

func TestIronCoderE2E_Generate(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the ironcoder binary")
	}
	repoRoot := findRepoRoot(t)
	bin := buildBinary(t, repoRoot)

	boards := t.TempDir()
	writeBoard(t, boards, "Adafruit", "Feather_RP2040", featherManifest, featherBSP)
	writeBoard(t, boards, "Adafruit", "OLED_Featherwing", oledManifest, oledBSP)

	home := t.TempDir()
	work := t.TempDir()
	env := append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
	)
	run := func(args ...string) string {
		t.Helper()
		cmd := exec.Command(bin, append([]string{"--boards-dir", boards, "--log-level", "warn"}, args...)...)
		cmd.Dir = work
		cmd.Env = env
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			t.Fatalf("ironcoder %s failed: %v\nstderr:\n%s", strings.Join(args, " "), err, stderr.String())
		}
		return stdout.String()
	}

	run("project", "new", "--dir", work, "--board", "OLED Featherwing", "--board", "Feather RP2040", "blinky")
	projectDir := filepath.Join(work, "blinky")
	run("project", "connect", "-p", projectDir, "--interface", "i2c", "Feather RP2040", "OLED Featherwing")

	show := run("project", "show", "-p", projectDir)
	if !strings.Contains(show, "[0] Feather RP2040 (main") || !strings.Contains(show, "[0] 0 -> 1 over I2C") {
		t.Fatalf("unexpected project show output:\n%s", show)
	}

	run("generate", "-p", projectDir)
	got, err := os.ReadFile(filepath.Join(projectDir, "src", "sys_mod_output_testing.rs"))
	if err != nil {
		t.Fatalf("read module: %v", err)
	}
	if string(got) != wantModule {
		t.Fatalf("unexpected module:\n%s\nwant:\n%s", got, wantModule)
	}

	var result policy.Result
	out := run("check", "--json", "-p", projectDir)
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse check output: %v\n%s", err, out)
	}
	if result.Summary.Errors != 0 {
		t.Fatalf("unexpected errors: %+v", result.Violations)
	}
}

func writeBoard(t *testing.T, root, manufacturer, name, manifest, lib string) {
	t.Helper()
	dir := filepath.Join(root, manufacturer, name)
	if err := os.MkdirAll(filepath.Join(dir, "bsp", "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".toml"), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bsp", "src", "lib.rs"), []byte(lib), 0o644); err != nil {
		t.Fatalf("write bsp: %v", err)
	}
}

func buildBinary(t *testing.T, repoRoot string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "ironcoder")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/ironcoder")
	cmd.Dir = repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("build ironcoder failed: %v\n%s", err, string(out))
	}
	return binPath
}

func findRepoRoot(t *testing.T) string {
	t.Helper()
	start, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}

	dir := start
	for {
		candidate := filepath.Join(dir, "cmd", "ironcoder", "main.go")
		if _, err := os.Stat(candidate); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("repo root not found from %s", start)
		}
		dir = parent
	}
}
