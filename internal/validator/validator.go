package validator

// The CUE schema is the contract between the files on disk and the Go model,
// and between the Go model and the policy engine. A board manifest with a
// misspelled standard or a fact table with a renamed column fails here with a
// path to the offending field, instead of silently producing no policy
// violations later. Fix the data or the producer; do not loosen the schema to
// make an error go away.

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

const (
	BoardManifestDef   = "#BoardManifest"
	ProjectManifestDef = "#ProjectManifest"
	SystemFactsDef     = "#SystemFacts"
)

// Validator checks Go values against the embedded CUE definitions
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded CUE schema
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// ValidateBoardManifest checks a decoded board manifest
func (v *Validator) ValidateBoardManifest(data interface{}) error {
	return v.Validate(BoardManifestDef, data)
}

// ValidateProjectManifest checks a project manifest before it is written or
// after it is read
func (v *Validator) ValidateProjectManifest(data interface{}) error {
	return v.Validate(ProjectManifestDef, data)
}

// ValidateFacts checks system fact tables before policy evaluation
func (v *Validator) ValidateFacts(data interface{}) error {
	return v.Validate(SystemFactsDef, data)
}

// Validate marshals data to JSON and unifies it with the named definition
func (v *Validator) Validate(def string, data interface{}) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	return v.ValidateJSON(def, jsonBytes)
}

// ValidateJSON validates JSON bytes directly against the named definition
func (v *Validator) ValidateJSON(def string, jsonBytes []byte) error {
	unified, err := v.unify(def, jsonBytes)
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s validation failed: %w", def, err)
	}
	return nil
}

// ValidationErrors returns one message per schema violation, or nil
func (v *Validator) ValidationErrors(def string, data interface{}) []string {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}

	unified, err := v.unify(def, jsonBytes)
	if err != nil {
		return []string{err.Error()}
	}

	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

func (v *Validator) unify(def string, jsonBytes []byte) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	defValue := v.schema.LookupPath(cue.ParsePath(def))
	if defValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", def, defValue.Err())
	}

	return defValue.Unify(dataValue), nil
}
