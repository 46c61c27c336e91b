package validator

import (
	"strings"
	"testing"
)

// TestBoardManifestContract checks that malformed manifests are rejected with
// a path to the field instead of loading as half-empty boards.
func TestBoardManifestContract(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	tests := []struct {
		name    string
		data    map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid_minimal",
			data: map[string]interface{}{
				"name":         "Feather RP2040",
				"manufacturer": "Adafruit",
			},
			wantErr: false,
		},
		{
			name: "valid_full",
			data: map[string]interface{}{
				"name":            "Feather RP2040",
				"manufacturer":    "Adafruit",
				"is_main_board":   true,
				"standard":        "Feather",
				"cpu":             "Cortex-M0+",
				"ram":             264,
				"flash":           8192,
				"bsp":             "feather_rp2040",
				"required_crates": []interface{}{"rp2040-hal"},
				"pinout": []interface{}{
					map[string]interface{}{
						"interface": map[string]interface{}{"type": "I2C", "direction": "bidirectional"},
						"pins":      []interface{}{2, 3},
					},
				},
			},
			wantErr: false,
		},
		{
			name: "missing_name",
			data: map[string]interface{}{
				"manufacturer": "Adafruit",
			},
			wantErr: true,
		},
		{
			name: "unknown_standard",
			data: map[string]interface{}{
				"name":         "Uno",
				"manufacturer": "Arduino",
				"standard":     "Shield",
			},
			wantErr: true,
		},
		{
			name: "unknown_interface_direction",
			data: map[string]interface{}{
				"name":         "OLED",
				"manufacturer": "SparkFun",
				"pinout": []interface{}{
					map[string]interface{}{
						"interface": map[string]interface{}{"type": "I2C", "direction": "sideways"},
						"pins":      []interface{}{},
					},
				},
			},
			wantErr: true,
		},
		{
			name: "unknown_field",
			data: map[string]interface{}{
				"name":         "OLED",
				"manufacturer": "SparkFun",
				"colour":       "red",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateBoardManifest(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBoardManifest() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProjectManifestContract(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	const mainID = "6f1c1a52-2f43-4c59-9a8e-3c2b7f0e6d11"
	const periphID = "0b8e4a9d-7c1f-4f63-8d2a-91e5b4c3a720"

	valid := map[string]interface{}{
		"name": "blinky",
		"boards": []interface{}{
			map[string]interface{}{"id": mainID, "manifest": map[string]interface{}{"name": "Feather RP2040", "manufacturer": "Adafruit"}},
			map[string]interface{}{"id": periphID, "manifest": map[string]interface{}{"name": "OLED", "manufacturer": "SparkFun"}},
		},
		"connections": []interface{}{
			map[string]interface{}{"main": mainID, "secondary": periphID, "interface": map[string]interface{}{"type": "I2C"}},
		},
	}
	if err := v.ValidateProjectManifest(valid); err != nil {
		t.Fatalf("expected valid manifest, got %v", err)
	}

	badID := map[string]interface{}{
		"name": "blinky",
		"boards": []interface{}{
			map[string]interface{}{"id": "board-0", "manifest": map[string]interface{}{"name": "X", "manufacturer": "Y"}},
		},
	}
	if err := v.ValidateProjectManifest(badID); err == nil {
		t.Fatalf("expected error for non-uuid board id")
	}
}

func TestValidationErrorsListsEachViolation(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	errs := v.ValidationErrors(BoardManifestDef, map[string]interface{}{
		"name":         "",
		"manufacturer": "Adafruit",
		"standard":     "Shield",
	})
	if len(errs) == 0 {
		t.Fatalf("expected violations, got none")
	}
	joined := strings.Join(errs, "\n")
	if !strings.Contains(joined, "standard") {
		t.Fatalf("expected standard to be reported, got %v", errs)
	}

	if errs := v.ValidationErrors(BoardManifestDef, map[string]interface{}{"name": "A", "manufacturer": "B"}); errs != nil {
		t.Fatalf("expected no violations, got %v", errs)
	}
}

func TestFactsContractRejectsNullTables(t *testing.T) {
	v, err := New()
	if err != nil {
		t.Fatalf("Failed to create validator: %v", err)
	}

	empty := map[string]interface{}{
		"boards":      []interface{}{},
		"connections": []interface{}{},
		"pinouts":     []interface{}{},
	}
	if err := v.ValidateFacts(empty); err != nil {
		t.Fatalf("expected empty tables to validate, got %v", err)
	}

	null := map[string]interface{}{
		"boards":      nil,
		"connections": []interface{}{},
		"pinouts":     []interface{}{},
	}
	if err := v.ValidateFacts(null); err == nil {
		t.Fatalf("expected null table to be rejected")
	}
}
