package requirement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stellarlinkco/aptname/internal/textindex"
)

// ErrUnknownKey is returned by SelectKey for keys outside the QWERTY letters.
var ErrUnknownKey = errors.New("unknown keyboard key")

// ErrNotKeyboardRule is returned by SelectKey on other rules.
var ErrNotKeyboardRule = errors.New("requirement has no keyboard")

// keyboardJamo maps a QWERTY key to the jamo it types on a 2-set Korean
// layout. Before the colon are the jamo printed on the key, after it the
// compound jamo that contain one of them.
var keyboardJamo = map[string]string{
	"Q": "ㅂㅃ:ㄼㅄ",
	"W": "ㅈㅉ:ㄵ",
	"E": "ㄷㄸ:",
	"R": "ㄱㄲ:ㄳㄺ",
	"T": "ㅅㅆ:ㄳㄽㅄ",
	"Y": "ㅛ:",
	"U": "ㅕ:",
	"I": "ㅑ:",
	"O": "ㅐㅒ:ㅙ",
	"P": "ㅔㅖ:ㅞ",
	"A": "ㅁ:ㄻ",
	"S": "ㄴ:ㄵㄶ",
	"D": "ㅇ:",
	"F": "ㄹ:ㄺㄻㄼㄽㄾㄿㅀ",
	"G": "ㅎ:ㄶㅀ",
	"H": "ㅗ:ㅘㅙㅚ",
	"J": "ㅓ:ㅝ",
	"K": "ㅏ:ㅘ",
	"L": "ㅣ:ㅚㅟㅢ",
	"Z": "ㅋ:",
	"X": "ㅌ:ㄾ",
	"C": "ㅊ:",
	"V": "ㅍ:ㄿ",
	"B": "ㅠ:",
	"N": "ㅜ:ㅝㅞㅟ",
	"M": "ㅡ:ㅢ",
}

// KeyLabel returns the jamo printed on key.
func KeyLabel(key string) string {
	jamo, _, _ := strings.Cut(keyboardJamo[strings.ToUpper(key)], ":")
	return jamo
}

// SelectKey records the key the player gave up and re-evaluates the game.
func (r *Requirement) SelectKey(key string) error {
	if r.Code != KeyboardOmit {
		return ErrNotKeyboardRule
	}
	key = strings.ToUpper(strings.TrimSpace(key))
	if _, ok := keyboardJamo[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	r.Params.Key = key
	r.notify()
	return nil
}

func checkKeyboardOmit(r *Requirement, text string) bool {
	key := r.Params.Key
	if key == "" {
		return false
	}
	if strings.Contains(text, key) || strings.Contains(text, strings.ToLower(key)) {
		return false
	}
	forbidden := strings.ReplaceAll(keyboardJamo[key], ":", "")
	for _, c := range text {
		switch {
		case textindex.IsJamo(c):
			if strings.ContainsRune(forbidden, c) {
				return false
			}
		case textindex.IsSyllable(c):
			lead, vowel, trail := textindex.Decompose(c)
			if strings.Contains(forbidden, lead) || strings.Contains(forbidden, vowel) {
				return false
			}
			if trail != "" && strings.Contains(forbidden, trail) {
				return false
			}
		}
	}
	return true
}
