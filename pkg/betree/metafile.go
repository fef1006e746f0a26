package betree

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMeta reads a Meta previously written by SaveMeta.
func LoadMeta(path string) (Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Meta{}, newErr(ErrIO, "read tree metadata: %v", err)
	}
	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Meta{}, newErr(ErrCorruption, "parse tree metadata: %v", err)
	}
	return meta, nil
}

// SaveMeta writes meta to path with the same permissions betree's Store
// implementations use for node files.
func SaveMeta(path string, meta Meta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return newErr(ErrCorruption, "marshal tree metadata: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return newErr(ErrIO, "write tree metadata: %v", err)
	}
	return nil
}
