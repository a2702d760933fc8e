// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NamedFormula is one entry of a measure's impactFormula object.
type NamedFormula struct {
	Name string
	ImpactFormula
}

// FormulaSet keeps impact formulas in the order they were declared. It
// encodes as a JSON/YAML object keyed by rule name.
type FormulaSet []NamedFormula

// Get returns the formula with the given name.
func (fs FormulaSet) Get(name string) (ImpactFormula, bool) {
	for _, f := range fs {
		if f.Name == name {
			return f.ImpactFormula, true
		}
	}
	return ImpactFormula{}, false
}

// set replaces an existing entry in place or appends a new one
func (fs *FormulaSet) set(name string, f ImpactFormula) {
	for i := range *fs {
		if (*fs)[i].Name == name {
			(*fs)[i].ImpactFormula = f
			return
		}
	}
	*fs = append(*fs, NamedFormula{Name: name, ImpactFormula: f})
}

func (fs FormulaSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.ImpactFormula)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (fs *FormulaSet) UnmarshalJSON(data []byte) error {
	*fs = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("impact formulas must be an object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("invalid formula key %v", tok)
		}
		var f ImpactFormula
		if err := dec.Decode(&f); err != nil {
			return fmt.Errorf("formula %q: %w", name, err)
		}
		fs.set(name, f)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (fs *FormulaSet) UnmarshalYAML(node *yaml.Node) error {
	*fs = nil
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("impact formulas must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		var f ImpactFormula
		if err := node.Content[i+1].Decode(&f); err != nil {
			return fmt.Errorf("formula %q: %w", node.Content[i].Value, err)
		}
		fs.set(node.Content[i].Value, f)
	}
	return nil
}
