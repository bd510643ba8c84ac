package agent

import "testing"

func TestSignatureRingBlocksThirdIdenticalCall(t *testing.T) {
	ring := newSignatureRing()
	sig := signatureOf("bash", `{"command":"ls"}`)

	// First call: no prior matches.
	if n := ring.countMatches(sig); n != 0 {
		t.Fatalf("expected 0 prior matches, got %d", n)
	}
	ring.insert(sig)

	// Second call: one prior match, still under the block threshold.
	if n := ring.countMatches(sig); n != 1 {
		t.Fatalf("expected 1 prior match, got %d", n)
	}
	ring.insert(sig)

	// Third call: two prior matches, meets the block threshold.
	if n := ring.countMatches(sig); n != 2 {
		t.Fatalf("expected 2 prior matches, got %d", n)
	}
}

func TestSignatureRingDistinguishesDifferentCalls(t *testing.T) {
	ring := newSignatureRing()
	a := signatureOf("bash", `{"command":"ls"}`)
	b := signatureOf("bash", `{"command":"pwd"}`)

	ring.insert(a)
	ring.insert(a)
	if n := ring.countMatches(b); n != 0 {
		t.Fatalf("expected unrelated call to have 0 matches, got %d", n)
	}
}

func TestSignatureRingWrapsAtEightSlots(t *testing.T) {
	ring := newSignatureRing()
	for i := 0; i < 8; i++ {
		ring.insert(signatureOf("tool", string(rune('a'+i))))
	}
	// The ring is now full; inserting a 9th distinct signature evicts
	// the oldest (slot 0) without growing past 8 tracked entries.
	evicted := signatureOf("tool", "a")
	if n := ring.countMatches(evicted); n != 1 {
		t.Fatalf("expected the soon-to-be-evicted signature to still match once, got %d", n)
	}
	ring.insert(signatureOf("tool", "i"))
	if n := ring.countMatches(evicted); n != 0 {
		t.Fatalf("expected the evicted signature to no longer match, got %d", n)
	}
}
