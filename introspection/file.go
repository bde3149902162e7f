package introspection

import (
	"fmt"
	"io"
	"os"

	"sigs.k8s.io/yaml"
)

// snapshotFile is the on-disk layout written by Encode.
type snapshotFile struct {
	Namespaces  []*Namespace  `json:"namespaces"`
	Classes     []*Class      `json:"classes"`
	Attributes  []*Attribute  `json:"attributes"`
	Constraints []*Constraint `json:"constraints"`
}

// LoadFile reads a YAML or JSON snapshot from path.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Decode parses a YAML or JSON snapshot document.
func Decode(data []byte) (*Snapshot, error) {
	var f snapshotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return NewSnapshot(f.Namespaces, f.Classes, f.Attributes, f.Constraints)
}

// Encode writes the snapshot as YAML.
func (s *Snapshot) Encode(w io.Writer) error {
	out, err := yaml.Marshal(snapshotFile{
		Namespaces:  s.namespaces,
		Classes:     s.classes,
		Attributes:  s.attributes,
		Constraints: s.constraints,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
