package event

import (
	"maps"
	"slices"
	"time"

	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/textindex"
)

const (
	fireMarker  = "🔥"
	floodMarker = "🌊"

	floodRiseTicks = 10
)

var kinds = map[Kind]behavior{
	Fire: {
		icon:       fireMarker,
		message:    "아파트에 화재가 발생했습니다!\n이름이 다 타기 전에 불씨🔥를 꺼뜨리세요!",
		period:     2 * time.Second,
		onActivate: igniteFire,
		onTick:     spreadFire,
		shouldActivate: func(e *Event) bool {
			return e.ctx.Name.Contains(fireMarker)
		},
	},
	Flood: {
		icon:       floodMarker,
		message:    "장마철 집중호우로 단지가 침수되었습니다!\n물🌊이 다 빠질 때까지 이름을 지켜 주세요!",
		period:     time.Second,
		onActivate: startFlood,
		onTick:     driftFlood,
		shouldActivate: func(e *Event) bool {
			return false
		},
		shouldDeactivate: func(e *Event) bool {
			return !e.ctx.Name.Contains(floodMarker)
		},
	},
}

// fuel reports whether letters[i] exists and is not marker.
func fuel(letters []string, i int, marker string) bool {
	return i >= 0 && i < len(letters) && letters[i] != marker
}

func igniteFire(e *Event) {
	name := e.ctx.Name
	at := e.ctx.Rand.IntN(name.Len() + 1)
	e.apply(name.Insert(at, fireMarker+fireMarker))
}

// spreadFire burns, extinguishes and then grows the fire. Burning is decided
// on one snapshot of the name and applied back to front; growth is decided
// on the burnt name.
func spreadFire(e *Event) {
	name, src := e.ctx.Name, e.ctx.Rand

	letters := name.Graphemes()
	burnt := make(map[int]bool)
	for i, c := range letters {
		if c != fireMarker {
			continue
		}
		prev, next := fuel(letters, i-1, fireMarker), fuel(letters, i+1, fireMarker)
		if prev && random.Chance(src, 0.5) {
			burnt[i-1] = true
		}
		if next && random.Chance(src, 0.5) {
			burnt[i+1] = true
		}
		if !prev && !next && random.Chance(src, 0.6) {
			burnt[i] = true
		}
	}
	idx := slices.Sorted(maps.Keys(burnt))
	slices.Reverse(idx)
	for _, i := range idx {
		e.apply(name.Delete(i, i+1))
	}

	letters = name.Graphemes()
	var sparks []int
	for i, c := range letters {
		if c != fireMarker {
			continue
		}
		n := 0
		if fuel(letters, i-1, fireMarker) {
			n++
		}
		if fuel(letters, i+1, fireMarker) {
			n++
		}
		if n > 0 && random.Chance(src, 0.4*float64(n)) {
			sparks = append(sparks, i)
		}
	}
	for j := len(sparks) - 1; j >= 0; j-- {
		e.apply(name.Insert(sparks[j], fireMarker))
	}
}

func startFlood(e *Event) {
	e.step = 0
	e.apply(e.ctx.Name.Insert(0, floodMarker))
}

// driftFlood keeps the water rising for the first ticks and moves every
// marker once. A marker at the very end drains away.
func driftFlood(e *Event) {
	name, src := e.ctx.Name, e.ctx.Rand
	if e.step < floodRiseTicks {
		e.apply(name.Insert(0, floodMarker))
	}
	e.step++

	letters := name.Graphemes()
	before := len(letters)
	run := 0
	for i := 0; i < len(letters); i++ {
		if letters[i] != floodMarker {
			run = 0
			continue
		}
		run++
		if i == len(letters)-1 {
			letters = letters[:i]
			break
		}
		if fuel(letters, i+1, floodMarker) && random.Chance(src, min(0.9, 0.55+0.05*float64(run-1))) {
			letters[i], letters[i+1] = letters[i+1], letters[i]
			i++
			run = 0
			continue
		}
		if fuel(letters, i-1, floodMarker) && random.Chance(src, 0.15) {
			letters[i], letters[i-1] = letters[i-1], letters[i]
			run = 0
		}
	}
	text := textindex.Join(letters)
	if text != name.String() {
		e.apply(name.Replace(0, before, text))
	}
}

