package arena

import "testing"

func TestAllocAlignment(t *testing.T) {
	a := New(Size4K)
	p, err := a.Alloc(3, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p) != 3 {
		t.Fatalf("expected 3 bytes, got %d", len(p))
	}

	p2, err := a.Alloc(8, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	off := a.Used() - len(p2)
	if off%8 != 0 {
		t.Fatalf("expected 8-byte aligned offset, got %d", off)
	}
}

func TestAllocMonotonic(t *testing.T) {
	a := New(Size4K)
	prevUsed := a.Used()
	for i := 0; i < 10; i++ {
		if _, err := a.Alloc(16, 4); err != nil {
			t.Fatalf("alloc %d: %v", i, err)
		}
		if a.Used() < prevUsed {
			t.Fatalf("used went backwards")
		}
		if a.Peak() < a.Used() {
			t.Fatalf("peak %d < used %d", a.Peak(), a.Used())
		}
		prevUsed = a.Used()
	}
}

func TestAllocOverflowRejected(t *testing.T) {
	a := New(16)
	if _, err := a.Alloc(17, 1); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	if a.Used() != 0 {
		t.Fatalf("failed alloc must not move offset")
	}

	if _, err := a.Alloc(16, 1); err != nil {
		t.Fatalf("exact fit should succeed: %v", err)
	}
	if _, err := a.Alloc(1, 1); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory after exact fit, got %v", err)
	}
}

func TestResetPreservesPeak(t *testing.T) {
	a := New(Size4K)
	if _, err := a.Alloc(100, 1); err != nil {
		t.Fatal(err)
	}
	peakBefore := a.Peak()

	a.Reset()
	if a.Used() != 0 {
		t.Fatalf("expected used=0 after reset, got %d", a.Used())
	}
	if a.Peak() != peakBefore {
		t.Fatalf("reset must preserve peak: got %d want %d", a.Peak(), peakBefore)
	}
}

func TestAlignUpNoWraparound(t *testing.T) {
	a := New(8)
	a.offset = 7
	if _, err := a.Alloc(8, 8); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
}
