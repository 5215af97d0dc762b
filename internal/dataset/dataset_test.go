package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestParseTable_NumbersAndStrings(t *testing.T) {
	rows, err := ParseTable("묘호,재위시작,재위끝\n세종,1418,1450\n연산군, 1494 ,1506\n")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	if got, ok := rows[0].Number("재위시작"); !ok || got != 1418 {
		t.Errorf("재위시작 = %v (%v), want 1418", got, ok)
	}
	if rows[0].String("묘호") != "세종" {
		t.Errorf("묘호 = %q, want 세종", rows[0].String("묘호"))
	}
	if rows[1].Int("재위시작") != 1494 {
		t.Errorf("trimmed number = %d, want 1494", rows[1].Int("재위시작"))
	}
	if rows[0].String("재위끝") != "1450" {
		t.Errorf("number as string = %q, want 1450", rows[0].String("재위끝"))
	}
}

func TestParseTable_QuotedCommasAndBOM(t *testing.T) {
	rows, err := ParseTable("\ufeffCode,Message\nX,\"a, b\"\n")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	if rows[0].String("Code") != "X" {
		t.Errorf("Code = %q, want X", rows[0].String("Code"))
	}
	if rows[0].String("Message") != "a, b" {
		t.Errorf("Message = %q, want %q", rows[0].String("Message"), "a, b")
	}
}

func TestParseTable_Empty(t *testing.T) {
	rows, err := ParseTable("")
	require.NoError(t, err)
	if len(rows) != 0 {
		t.Errorf("rows = %v, want none", rows)
	}
}

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	if len(d.Requirements) == 0 {
		t.Fatal("no requirements")
	}
	if d.Requirements[0].Code != "REMOVE_JUGONG" {
		t.Errorf("first requirement = %q, want REMOVE_JUGONG", d.Requirements[0].Code)
	}
	for name, pool := range map[string][]string{
		"jugong":  d.JugongNames,
		"english": d.EnglishWords,
		"subway":  d.SubwayStations,
		"cat":     d.CatEmoji,
	} {
		if len(pool) == 0 {
			t.Errorf("%s pool is empty", name)
		}
	}
	if len(d.JoseonKings) == 0 || d.JoseonKings[3].TempleName != "세종" || d.JoseonKings[3].ReignStart != 1418 {
		t.Errorf("kings = %+v", d.JoseonKings)
	}
	if len(d.Latin) == 0 || d.Latin[0].Latin == "" {
		t.Errorf("latin = %+v", d.Latin)
	}

	m, ok := d.Metadata("MORSE_CODE")
	if !ok || m.ProfileName == "" {
		t.Errorf("Metadata(MORSE_CODE) = %+v, %v", m, ok)
	}
	if _, ok := d.Metadata("NOPE"); ok {
		t.Error("Metadata(NOPE) should not exist")
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	fsys := fstest.MapFS{
		"Requirements.csv":       {Data: []byte("Code,Message\nA,a\n")},
		"JugongNames.csv":        {Data: []byte("Wrong\n상계\n")},
		"EnglishWord.csv":        {Data: []byte("EnglishWord\nPark\n")},
		"SubwayStationNames.csv": {Data: []byte("Name\n강남\n")},
		"CatEmoji.csv":           {Data: []byte("CAT_EMOJI\n🐱\n")},
		"JoseonKings.csv":        {Data: []byte("묘호,재위시작,재위끝\n세종,1418,1450\n")},
		"LATIN.csv":              {Data: []byte("한글,라틴어,발음\n빛,lux,룩스\n")},
	}
	_, err := Load(fsys)
	if err == nil {
		t.Fatal("expected error for missing column")
	}
}

func TestParsePack(t *testing.T) {
	p, err := ParsePack([]byte(`
requirements:
  - code: " REMOVE_JUGONG "
    message: 주공 빼요
    profileName: 부녀회장
pools:
  englishWords: [Riverside]
`))
	require.NoError(t, err)
	require.Len(t, p.Requirements, 1)
	if p.Requirements[0].Code != "REMOVE_JUGONG" {
		t.Errorf("code = %q, want trimmed", p.Requirements[0].Code)
	}

	d, err := Default()
	require.NoError(t, err)
	applied := d.Apply(p)
	if len(applied.Requirements) != 1 || applied.Requirements[0].Message != "주공 빼요" {
		t.Errorf("requirements = %+v", applied.Requirements)
	}
	if len(applied.EnglishWords) != 1 || applied.EnglishWords[0] != "Riverside" {
		t.Errorf("englishWords = %v", applied.EnglishWords)
	}
	if len(applied.SubwayStations) != len(d.SubwayStations) {
		t.Error("untouched pool should be kept")
	}
	if len(d.EnglishWords) == 1 {
		t.Error("Apply must not modify the receiver")
	}
}

func TestParsePack_Invalid(t *testing.T) {
	tests := []string{
		"requirements: [{message: x}]",
		"requirements: [{code: A}, {code: A}]",
		"requirements: {",
	}
	for _, in := range tests {
		if _, err := ParsePack([]byte(in)); !errors.Is(err, errInvalidPack) {
			t.Errorf("ParsePack(%q) err = %v, want errInvalidPack", in, err)
		}
	}
}

func TestLoadPack_MissingFile(t *testing.T) {
	p, err := LoadPack(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	if p != nil {
		t.Errorf("pack = %+v, want nil", p)
	}

	path := filepath.Join(t.TempDir(), "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pools:\n  catEmoji: [\"🐯\"]\n"), 0644))
	p, err = LoadPack(path)
	require.NoError(t, err)
	if len(p.Pools.CatEmoji) != 1 {
		t.Errorf("catEmoji = %v", p.Pools.CatEmoji)
	}
}
