package card

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed data/cards.yaml
var defaultSet []byte

// cardFile is the on-disk shape of a card data file.
type cardFile struct {
	Cards []*Definition `yaml:"cards"`
}

// LoadYAML reads card definitions from r and returns a populated registry.
func LoadYAML(r io.Reader) (*Registry, error) {
	var file cardFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode card file: %w", err)
	}
	reg := NewRegistry()
	for _, def := range file.Cards {
		if err := reg.Register(def); err != nil {
			return nil, fmt.Errorf("register card: %w", err)
		}
	}
	return reg, nil
}

// LoadDefaultSet loads the card set embedded in the binary.
func LoadDefaultSet() (*Registry, error) {
	return LoadYAML(bytes.NewReader(defaultSet))
}
