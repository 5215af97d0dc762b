package textindex

const (
	syllableBase = 0xAC00
	syllableLast = 0xD7A3
	vowelCount   = 21
	trailCount   = 28
	leadStride   = vowelCount * trailCount // 588
)

var (
	leads = [...]string{
		"ㄱ", "ㄲ", "ㄴ", "ㄷ", "ㄸ", "ㄹ", "ㅁ", "ㅂ", "ㅃ", "ㅅ",
		"ㅆ", "ㅇ", "ㅈ", "ㅉ", "ㅊ", "ㅋ", "ㅌ", "ㅍ", "ㅎ",
	}
	vowels = [...]string{
		"ㅏ", "ㅐ", "ㅑ", "ㅒ", "ㅓ", "ㅔ", "ㅕ", "ㅖ", "ㅗ", "ㅘ",
		"ㅙ", "ㅚ", "ㅛ", "ㅜ", "ㅝ", "ㅞ", "ㅟ", "ㅠ", "ㅡ", "ㅢ", "ㅣ",
	}
	trails = [...]string{
		"", "ㄱ", "ㄲ", "ㄳ", "ㄴ", "ㄵ", "ㄶ", "ㄷ", "ㄹ", "ㄺ",
		"ㄻ", "ㄼ", "ㄽ", "ㄾ", "ㄿ", "ㅀ", "ㅁ", "ㅂ", "ㅄ", "ㅅ",
		"ㅆ", "ㅇ", "ㅈ", "ㅊ", "ㅋ", "ㅌ", "ㅍ", "ㅎ",
	}
)

// IsSyllable reports whether r is a precomposed Hangul syllable block.
func IsSyllable(r rune) bool {
	return r >= syllableBase && r <= syllableLast
}

// IsJamo reports whether r is a Hangul compatibility consonant or vowel.
func IsJamo(r rune) bool {
	return r >= 'ㄱ' && r <= 'ㅣ'
}

// Decompose splits a syllable block into lead consonant, vowel and trailing
// consonant cluster. trail is empty when the syllable has none. Runes that
// are not syllable blocks decompose to three empty strings.
func Decompose(r rune) (lead, vowel, trail string) {
	if !IsSyllable(r) {
		return "", "", ""
	}
	u := int(r - syllableBase)
	l := u / leadStride
	v := (u - l*leadStride) / trailCount
	t := u % trailCount
	return leads[l], vowels[v], trails[t]
}

// HasBatchim reports whether the last character of word is a syllable with a
// trailing consonant, which selects particles such as 은/는 and 을/를.
func HasBatchim(word string) bool {
	rs := []rune(word)
	if len(rs) == 0 {
		return false
	}
	last := rs[len(rs)-1]
	if !IsSyllable(last) {
		return false
	}
	return (last-syllableBase)%trailCount != 0
}
