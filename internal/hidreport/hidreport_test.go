package hidreport

import (
	"testing"

	"github.com/nullkey/keyflow/internal/keycode"
)

func TestBuildBootReportFoldsModifiers(t *testing.T) {
	r := BuildBootReport([]keycode.Code{keycode.LCtrl, keycode.LShift, keycode.A})
	wantMod := byte(0)
	if bit, ok := keycode.LCtrl.ModifierBit(); ok {
		wantMod |= bit
	}
	if bit, ok := keycode.LShift.ModifierBit(); ok {
		wantMod |= bit
	}
	if r.Modifier() != wantMod {
		t.Fatalf("Modifier() = %#02x, want %#02x", r.Modifier(), wantMod)
	}
	keys := r.Keys()
	if keys[0] != byte(keycode.A) {
		t.Fatalf("Keys()[0] = %#02x, want A (%#02x)", keys[0], byte(keycode.A))
	}
	for i := 1; i < 6; i++ {
		if keys[i] != 0 {
			t.Fatalf("Keys()[%d] = %#02x, want 0", i, keys[i])
		}
	}
	if r.Overflowed() {
		t.Fatal("expected no overflow for 1 key")
	}
}

func TestBuildBootReportExcludesConsumerAndNo(t *testing.T) {
	r := BuildBootReport([]keycode.Code{keycode.No, keycode.AudioVolUp, keycode.A})
	keys := r.Keys()
	if keys[0] != byte(keycode.A) {
		t.Fatalf("expected only A in keys, got %v", keys)
	}
}

func TestBuildBootReportOverflow(t *testing.T) {
	held := []keycode.Code{
		keycode.A, keycode.B, keycode.C, keycode.D, keycode.E, keycode.F, keycode.G,
	}
	r := BuildBootReport(held)
	if !r.Overflowed() {
		t.Fatal("expected overflow for 7 non-modifier keys")
	}
	keys := r.Keys()
	for _, k := range keys {
		if k != 0x01 {
			t.Fatalf("expected all rollover markers, got %v", keys)
		}
	}
}

func TestBuildBootReportEmpty(t *testing.T) {
	r := BuildBootReport(nil)
	if r.Modifier() != 0 {
		t.Fatalf("expected zero modifier byte, got %#02x", r.Modifier())
	}
	if r.Overflowed() {
		t.Fatal("empty report must not read as overflowed")
	}
}

func TestBuildConsumerReport(t *testing.T) {
	r := BuildConsumerReport([]keycode.Code{keycode.A, keycode.AudioVolUp})
	if r.Usage() != uint16(keycode.AudioVolUp) {
		t.Fatalf("Usage() = %#04x, want %#04x", r.Usage(), uint16(keycode.AudioVolUp))
	}
}

func TestBuildConsumerReportNoneHeld(t *testing.T) {
	r := BuildConsumerReport([]keycode.Code{keycode.A, keycode.B})
	if r.Usage() != 0 {
		t.Fatalf("Usage() = %#04x, want 0", r.Usage())
	}
}

func TestDecodeCollapsesRepeatedSnapshots(t *testing.T) {
	snapshots := [][]keycode.Code{
		{keycode.H},
		{keycode.H},
		{keycode.I},
	}
	got := Decode(snapshots)
	if got != "hi" {
		t.Fatalf("Decode(...) = %q, want %q", got, "hi")
	}
}

func TestDecodeAppliesShift(t *testing.T) {
	snapshots := [][]keycode.Code{
		{keycode.LShift, keycode.H},
		{keycode.I},
	}
	got := Decode(snapshots)
	if got != "Hi" {
		t.Fatalf("Decode(...) = %q, want %q", got, "Hi")
	}
}

func TestDecodeSkipsNonPrintable(t *testing.T) {
	snapshots := [][]keycode.Code{
		{keycode.F1},
		{keycode.A},
	}
	got := Decode(snapshots)
	if got != "a" {
		t.Fatalf("Decode(...) = %q, want %q", got, "a")
	}
}
