package shape

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Shape definition files bind named shapes into the registry without
// going through code, the moral equivalent of loading a module of type
// aliases. The format is TOML:
//
//	[types]
//	point  = "{x: int32, y: int32}"
//	points = "Stream, point"
//
//	[ingest]
//	max_recursion = 10
//	sample        = 50
//
// Definitions are processed in file order, so later entries may refer
// to earlier ones by name.

// Defs is a parsed definition file.
type Defs struct {
	Types  map[string]string `toml:"types"`
	Ingest IngestTuning      `toml:"ingest"`
}

// IngestTuning overrides graph-construction ingestion knobs. Zero
// fields leave the corresponding default in place.
type IngestTuning struct {
	MaxRecursion int `toml:"max_recursion"`
	MaxArguments int `toml:"max_arguments"`
	Sample       int `toml:"sample"`
}

// LoadDefs reads a TOML definition file and registers every named
// shape, returning the parsed file for its tuning section.
func LoadDefs(path string) (*Defs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shape definitions")
	}
	return loadDefs(string(data))
}

func loadDefs(data string) (*Defs, error) {
	var defs Defs
	md, err := toml.Decode(data, &defs)
	if err != nil {
		return nil, errors.Wrap(err, "decode shape definitions")
	}

	// md.Keys preserves file order; map iteration would not.
	for _, key := range md.Keys() {
		parts := key
		if len(parts) != 2 || parts[0] != "types" {
			continue
		}
		name := parts[1]
		term, err := Parse(defs.Types[name])
		if err != nil {
			return nil, errors.Wrapf(err, "definition %q", name)
		}
		if err := Register(name, term); err != nil {
			return nil, err
		}
	}
	return &defs, nil
}
