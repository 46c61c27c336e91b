package board

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	"github.com/iron-coder/ironcoder/internal/config"
)

const featherManifest = `name = "Feather RP2040"
manufacturer = "Adafruit"
is_main_board = true
standard = "Feather"
cpu = "Cortex-M0+"
ram = 264
flash = 8192
bsp = "feather_rp2040"
required_crates = ["rp2040-hal"]
related_crates = ["smart-leds"]

[[pinout]]
interface = { type = "I2C", direction = "bidirectional" }
pins = [2, 3]

[[pinout]]
interface = { type = "GPIO" }
pins = [13]
`

const oledManifest = `name = "Qwiic OLED (1.3in)"
manufacturer = "SparkFun"
standard = "ThingPlus"
bsp = "sparkfun-oled"

[[pinout]]
interface = { type = "I2C", direction = "input" }
pins = [0, 1]
`

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"SparkFun/Qwiic_OLED/oled.toml":                   oledManifest,
		"Adafruit/Feather_RP2040/feather_rp2040.toml":     featherManifest,
		"Adafruit/Feather_RP2040/feather_rp2040.svg":      "<svg/>",
		"Adafruit/Feather_RP2040/examples/blinky.rs":      "fn main() {}",
		"Adafruit/Feather_RP2040/examples/neopixel.rs":    "fn main() {}",
		"Adafruit/Feather_RP2040/template/Cargo.toml":     "[package]",
		"Adafruit/Feather_RP2040/bsp/src/lib.rs":          "pub struct Board;",
		"Adafruit/Feather_RP2040/bsp/Cargo.toml":          "[package]",
		"Adafruit/Feather_RP2040/template/src/main.rs.in": "",
	})

	cat, err := LoadCatalog(root, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(cat.Boards) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(cat.Boards))
	}

	feather := cat.Boards[0]
	if feather.Name() != "Feather RP2040" {
		t.Fatalf("expected Adafruit board first, got %s", feather.Name())
	}
	wantManifest := Manifest{
		Name:           "Feather RP2040",
		Manufacturer:   "Adafruit",
		IsMainBoard:    true,
		Standard:       Feather,
		CPU:            "Cortex-M0+",
		RAM:            264,
		Flash:          8192,
		BSP:            "feather_rp2040",
		RequiredCrates: []string{"rp2040-hal"},
		RelatedCrates:  []string{"smart-leds"},
		Pinout: Pinout{
			{Interface: Interface{Type: I2C, Direction: Bidirectional}, Pins: []int{2, 3}},
			{Interface: Interface{Type: GPIO}, Pins: []int{13}},
		},
	}
	if diff := cmp.Diff(wantManifest, feather.Manifest); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}

	dir := filepath.Dir(feather.ManifestPath)
	if feather.ImagePath != filepath.Join(dir, "feather_rp2040.svg") {
		t.Fatalf("unexpected image path %q", feather.ImagePath)
	}
	if len(feather.Examples) != 2 {
		t.Fatalf("expected 2 examples, got %v", feather.Examples)
	}
	if feather.TemplateDir != filepath.Join(dir, "template") {
		t.Fatalf("unexpected template dir %q", feather.TemplateDir)
	}
	if feather.BSPPath() != filepath.Join(dir, "bsp") {
		t.Fatalf("unexpected bsp dir %q", feather.BSPPath())
	}

	oled, ok := cat.Find("Qwiic OLED (1.3in)")
	if !ok {
		t.Fatalf("expected to find OLED board")
	}
	if oled.ImagePath != "" || oled.BSPPath() != "" || oled.IsMainBoard() {
		t.Fatalf("unexpected OLED assets %+v", oled)
	}
	if got := cat.MainBoards(); len(got) != 1 || got[0] != feather {
		t.Fatalf("expected only the Feather as main board, got %v", got)
	}
}

func TestLoadCatalogKeepsGoodBoardsOnError(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Adafruit/Feather_RP2040/feather.toml": featherManifest,
		"Bad/Unknown_Key/board.toml":           "name = \"X\"\nmanufacturer = \"Bad\"\ncolour = \"red\"\n",
		"Bad/Bad_Standard/board.toml":          "name = \"Y\"\nmanufacturer = \"Bad\"\nstandard = \"Shield\"\n",
		"Bad/Not_Toml/board.toml":              "name = ",
	})

	cat, err := LoadCatalog(root, LoadOptions{})
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", n, err)
	}
	if len(cat.Boards) != 1 || cat.Boards[0].Name() != "Feather RP2040" {
		t.Fatalf("expected the good board to load, got %v", cat.Boards)
	}
}

func TestLoadCatalogDuplicateNamesCollide(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Adafruit/Feather_A/a.toml": featherManifest,
		"Clone/Feather_B/b.toml":    featherManifest,
	})

	cat, err := LoadCatalog(root, LoadOptions{})
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(cat.Boards) != 2 {
		t.Fatalf("duplicates are kept, got %d boards", len(cat.Boards))
	}
	if !cat.Boards[0].Equal(cat.Boards[1]) {
		t.Fatalf("boards with the same name must compare equal")
	}
	found, _ := cat.Find("Feather RP2040")
	if found != cat.Boards[0] {
		t.Fatalf("Find should return the first match")
	}
}

func TestLoadCatalogCustomGlobs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Adafruit/Feather_RP2040/feather.toml": featherManifest,
		"SparkFun/Qwiic_OLED/oled.toml":        oledManifest,
	})

	cfg := config.DefaultConfig()
	cfg.Catalog.Exclude = []string{"SparkFun/**"}
	cat, err := LoadCatalog(root, LoadOptions{Config: cfg})
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(cat.Boards) != 1 || cat.Boards[0].Name() != "Feather RP2040" {
		t.Fatalf("expected only the Feather, got %v", cat.Boards)
	}
}

func TestLoadCatalogMissingDir(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope"), LoadOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestEqualAndClone(t *testing.T) {
	a := &Board{Manifest: Manifest{Name: "Feather RP2040", Manufacturer: "Adafruit", RequiredCrates: []string{"hal"}}}
	b := &Board{Manifest: Manifest{Name: "Feather RP2040", Manufacturer: "Someone Else"}}
	if !a.Equal(b) {
		t.Fatalf("boards with the same name must be equal")
	}
	c := a.Clone()
	c.Manifest.RequiredCrates[0] = "changed"
	if a.Manifest.RequiredCrates[0] != "hal" {
		t.Fatalf("Clone must not share slices")
	}
	if !Standard("MicroMod").Valid() || Standard("Shield").Valid() {
		t.Fatalf("unexpected Standard validity")
	}
}
