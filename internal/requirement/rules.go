package requirement

import (
	"fmt"
	"strings"

	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/textindex"
)

var terrainNames = []string{
	"호수", "숲", "산", "계단", "강", "바다", "사막", "계곡", "폭포", "초원",
	"협곡", "늪", "절벽", "곶", "사구", "산호초", "삼각주", "동굴", "오아시스", "간헐천",
	"화산",
}

const specialCharacters = "~`!@#$%^&*()-_=+\\|]}[{'\";:/?.>,<"

var behaviors = map[Code]behavior{
	RemoveJugong: {
		check: func(r *Requirement, text string) bool {
			return !strings.Contains(text, "주공")
		},
	},
	English: {
		init: func(r *Requirement) {
			r.Params.Word = random.Choice(r.ctx.Rand, r.ctx.Data.EnglishWords)
			r.format(r.Params.Word)
		},
		check: containsFold,
	},
	RomanDigit: {
		init: func(r *Requirement) {
			r.Params.Number = r.ctx.ComplexNumber
			r.Params.Pattern = ToRoman(r.Params.Number)
			r.format(r.Params.Number)
			r.Hint = r.Params.Pattern
		},
		check: func(r *Requirement, text string) bool {
			return strings.Contains(text, r.Params.Pattern)
		},
	},
	NameLength: {
		init: func(r *Requirement) {
			r.Params.Number = 12 + r.ctx.Rand.IntN(19)
			r.format(r.Params.Number)
		},
		check: func(r *Requirement, text string) bool {
			return textindex.Count(text) >= r.Params.Number
		},
	},
	Terrain: {
		init: func(r *Requirement) {
			r.Params.Word = random.Choice(r.ctx.Rand, terrainNames)
			r.format(r.Params.Word)
		},
		check: containsWord,
	},
	SubwayStation: {
		init: func(r *Requirement) {
			r.Params.Word = random.Choice(r.ctx.Rand, r.ctx.Data.SubwayStations)
			r.format(r.Params.Word)
		},
		check: containsWord,
	},
	KeyboardOmit: {
		check: checkKeyboardOmit,
	},
	MorseCode: {
		init: func(r *Requirement) {
			m := random.Choice(r.ctx.Rand, morseMessages)
			r.Params.Word = m.plain
			r.Params.Pattern = m.code
			r.format(m.plain)
			r.Hint = m.code
		},
		check: checkMorse,
	},
	JoseonKing: {
		init: func(r *Requirement) {
			var eligible []int
			for i, k := range r.ctx.Data.JoseonKings {
				if k.ReignStart+2 <= k.ReignEnd {
					eligible = append(eligible, i)
				}
			}
			king := r.ctx.Data.JoseonKings[random.Choice(r.ctx.Rand, eligible)]
			offset := 0
			if span := king.ReignEnd - king.ReignStart - 2; span > 0 {
				offset = r.ctx.Rand.IntN(span)
			}
			r.Params.Number = king.ReignStart + 1 + offset
			r.Params.Word = king.TempleName
			r.format(r.Params.Number)
			r.Hint = king.TempleName
		},
		check: containsWord,
	},
	Latin: {
		init: func(r *Requirement) {
			w := random.Choice(r.ctx.Rand, r.ctx.Data.Latin)
			r.Params.Word = w.Latin
			r.format(w.Korean, w.Latin, w.Pronunciation)
		},
		check: containsFold,
	},
	SpecialCharacter: {
		init: func(r *Requirement) {
			r.Params.Set = strings.Split(specialCharacters, "")
		},
		check: containsAny,
	},
	CatEmoji: {
		init: func(r *Requirement) {
			r.Params.Set = r.ctx.Data.CatEmoji
		},
		check: containsAny,
	},
}

var notImplemented = behavior{
	init: func(r *Requirement) {
		r.message = fmt.Sprintf("정의되지 않은 요구사항 입니다. (Code: %s)\n자동으로 조건이 만족됩니다.\n~~%s~~", r.Metadata.Code, r.Metadata.Message)
		r.auto.Rearm(r.ctx.Sched, AutoSatisfyDelay, func() {
			r.Params.Elapsed = true
			r.notify()
		})
	},
	check: func(r *Requirement, text string) bool {
		return r.Params.Elapsed
	},
}

func containsWord(r *Requirement, text string) bool {
	return strings.Contains(text, r.Params.Word)
}

func containsFold(r *Requirement, text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(r.Params.Word))
}

func containsAny(r *Requirement, text string) bool {
	for _, s := range r.Params.Set {
		if s != "" && strings.Contains(text, s) {
			return true
		}
	}
	return false
}
