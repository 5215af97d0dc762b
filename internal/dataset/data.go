package dataset

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"
)

//go:embed data/*.csv
var embedded embed.FS

// Metadata describes one requirement slot in the order it is introduced.
type Metadata struct {
	Code         string `yaml:"code"`
	Message      string `yaml:"message"`
	ProfileName  string `yaml:"profileName"`
	ProfileImage string `yaml:"profileImage"`
}

type King struct {
	TempleName string
	ReignStart int
	ReignEnd   int
}

type LatinWord struct {
	Korean        string
	Latin         string
	Pronunciation string
}

// Data is everything rule initializers read. It is immutable once loaded.
type Data struct {
	Requirements   []Metadata
	JugongNames    []string
	EnglishWords   []string
	SubwayStations []string
	CatEmoji       []string
	JoseonKings    []King
	Latin          []LatinWord
}

var loadDefault = sync.OnceValues(func() (*Data, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
})

// Default returns the data shipped with the binary.
func Default() (*Data, error) {
	return loadDefault()
}

// Load reads every table from fsys.
func Load(fsys fs.FS) (*Data, error) {
	read := func(name string) ([]Row, error) {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		rows, err := ParseTable(string(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return rows, nil
	}

	d := &Data{}

	reqs, err := read("Requirements.csv")
	if err != nil {
		return nil, err
	}
	for i, r := range reqs {
		if r.String("Code") == "" {
			return nil, fmt.Errorf("Requirements.csv: row %d: missing Code", i+1)
		}
		d.Requirements = append(d.Requirements, Metadata{
			Code:         r.String("Code"),
			Message:      r.String("Message"),
			ProfileName:  r.String("ProfileName"),
			ProfileImage: r.String("ProfileImage"),
		})
	}

	pools := []struct {
		file, col string
		dst       *[]string
	}{
		{"JugongNames.csv", "Name", &d.JugongNames},
		{"EnglishWord.csv", "EnglishWord", &d.EnglishWords},
		{"SubwayStationNames.csv", "Name", &d.SubwayStations},
		{"CatEmoji.csv", "CAT_EMOJI", &d.CatEmoji},
	}
	for _, p := range pools {
		rows, err := read(p.file)
		if err != nil {
			return nil, err
		}
		if *p.dst, err = column(rows, p.col); err != nil {
			return nil, fmt.Errorf("%s: %w", p.file, err)
		}
	}

	kings, err := read("JoseonKings.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range kings {
		d.JoseonKings = append(d.JoseonKings, King{
			TempleName: r.String("묘호"),
			ReignStart: r.Int("재위시작"),
			ReignEnd:   r.Int("재위끝"),
		})
	}

	latin, err := read("LATIN.csv")
	if err != nil {
		return nil, err
	}
	for _, r := range latin {
		d.Latin = append(d.Latin, LatinWord{
			Korean:        r.String("한글"),
			Latin:         r.String("라틴어"),
			Pronunciation: r.String("발음"),
		})
	}

	return d, nil
}

// Metadata looks up a requirement slot by code.
func (d *Data) Metadata(code string) (Metadata, bool) {
	for _, m := range d.Requirements {
		if m.Code == code {
			return m, true
		}
	}
	return Metadata{}, false
}
