package game

import (
	"fmt"

	"github.com/stellarlinkco/aptname/internal/dataset"
	"github.com/stellarlinkco/aptname/internal/random"
)

// Info is computed once per session and shared by every rule.
type Info struct {
	ComplexNumber int
	JugongName    string
	Data          *dataset.Data
}

// NewInfo draws a complex number in [100, 4000) and a base name.
func NewInfo(data *dataset.Data, src random.Source) *Info {
	info := &Info{
		ComplexNumber: 100 + src.IntN(3900),
		Data:          data,
	}
	if len(data.JugongNames) > 0 {
		info.JugongName = random.Choice(src, data.JugongNames)
	}
	return info
}

// Metadata looks up a requirement slot by code.
func (i *Info) Metadata(code string) (dataset.Metadata, bool) {
	return i.Data.Metadata(code)
}

// InitialName is the name every session starts from.
func (i *Info) InitialName() string {
	return fmt.Sprintf("%s주공아파트%d단지", i.JugongName, i.ComplexNumber)
}
