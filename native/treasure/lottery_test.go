package treasure

import "testing"

func TestDrawActivation(t *testing.T) {
	hit, err := drawActivation(fixedRandom{v: 0}, 100, nil)
	if err != nil || !hit {
		t.Fatalf("lowest draw should hit, got %v %v", hit, err)
	}
	hit, err = drawActivation(fixedRandom{v: int64(99) << 32}, 100, nil)
	if err != nil || hit {
		t.Fatalf("highest draw should miss, got %v %v", hit, err)
	}
	for _, odds := range []uint32{0, 1} {
		hit, err = drawActivation(fixedRandom{v: int64(99) << 32}, odds, nil)
		if err != nil || !hit {
			t.Fatalf("odds %d should always hit", odds)
		}
	}
}

func TestHashSourceIsDeterministic(t *testing.T) {
	seed := lotterySeed([]byte{1, 2, 3}, 7, finder, testNow)
	a := HashSource{}.Rand(seed).Int63()
	b := HashSource{}.Rand(seed).Int63()
	if a != b {
		t.Fatalf("same seed must give the same stream")
	}
	other := HashSource{}.Rand(lotterySeed([]byte{1, 2, 3}, 8, finder, testNow)).Int63()
	if a == other {
		t.Fatalf("different treasures should draw different streams")
	}
}
