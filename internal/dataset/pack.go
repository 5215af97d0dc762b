package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var errInvalidPack = errors.New("invalid data pack")

// Pack is a YAML file that overrides parts of the shipped data.
//
//	requirements:
//	  - code: REMOVE_JUGONG
//	    message: ...
//	pools:
//	  englishWords: [Palace, Castle]
type Pack struct {
	Requirements []Metadata `yaml:"requirements"`
	Pools        struct {
		JugongNames    []string `yaml:"jugongNames"`
		EnglishWords   []string `yaml:"englishWords"`
		SubwayStations []string `yaml:"subwayStations"`
		CatEmoji       []string `yaml:"catEmoji"`
	} `yaml:"pools"`
}

// LoadPack reads a pack from path. A missing file yields a nil pack.
func LoadPack(path string) (*Pack, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read data pack %q: %w", path, err)
	}
	return ParsePack(content)
}

func ParsePack(content []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidPack, err)
	}
	seen := make(map[string]bool, len(p.Requirements))
	for i, m := range p.Requirements {
		code := strings.TrimSpace(m.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: requirement %d: missing code", errInvalidPack, i+1)
		}
		if seen[code] {
			return nil, fmt.Errorf("%w: duplicate requirement code %q", errInvalidPack, code)
		}
		seen[code] = true
		p.Requirements[i].Code = code
	}
	return &p, nil
}

// Apply returns a copy of d with the non-empty parts of p replacing d's.
func (d *Data) Apply(p *Pack) *Data {
	out := *d
	if p == nil {
		return &out
	}
	if len(p.Requirements) > 0 {
		out.Requirements = p.Requirements
	}
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&out.JugongNames, p.Pools.JugongNames)
	replace(&out.EnglishWords, p.Pools.EnglishWords)
	replace(&out.SubwayStations, p.Pools.SubwayStations)
	replace(&out.CatEmoji, p.Pools.CatEmoji)
	return &out
}
