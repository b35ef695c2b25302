package undo

import (
	"encoding/json"
	"testing"
)

func batchWith(table string) *Batch {
	b := &Batch{}
	b.Append(table, nil, json.RawMessage(`{"nr":1}`))
	return b
}

func TestPush_ClearsRedo(t *testing.T) {
	s := NewStack()
	b1 := batchWith("MA_Mandant")
	s.Push(b1)
	s.ShiftToRedo(b1)

	if u, r := s.Depths(); u != 0 || r != 1 {
		t.Fatalf("Depths() = (%d, %d), want (0, 1)", u, r)
	}

	s.Push(batchWith("Benutzer"))
	if u, r := s.Depths(); u != 1 || r != 0 {
		t.Errorf("Depths() after new commit = (%d, %d), want (1, 0)", u, r)
	}
}

func TestPush_IgnoresEmptyBatch(t *testing.T) {
	s := NewStack()
	s.Push(&Batch{})
	s.Push(nil)
	if u, r := s.Depths(); u != 0 || r != 0 {
		t.Errorf("Depths() = (%d, %d), want (0, 0)", u, r)
	}
}

func TestShift_RoundTrip(t *testing.T) {
	s := NewStack()
	b := batchWith("TB_Eintrag")
	s.Push(b)

	got := s.PeekUndo()
	if got != b {
		t.Fatal("PeekUndo() did not return pushed batch")
	}
	s.ShiftToRedo(got)

	if s.PeekUndo() != nil {
		t.Error("undo side should be empty after shift")
	}
	if s.PeekRedo() != b {
		t.Error("redo side should hold the shifted batch")
	}

	s.ShiftToUndo(b)
	if s.PeekUndo() != b || s.PeekRedo() != nil {
		t.Error("batch did not return to the undo side")
	}
}

func TestShift_StaleBatchIgnored(t *testing.T) {
	s := NewStack()
	b1 := batchWith("TB_Eintrag")
	b2 := batchWith("TB_Ort")
	s.Push(b1)
	s.Push(b2)

	// b1 is not on top; shifting it must be a no-op.
	s.ShiftToRedo(b1)
	if u, r := s.Depths(); u != 2 || r != 0 {
		t.Errorf("Depths() = (%d, %d), want (2, 0)", u, r)
	}
}

func TestRecord_Kind(t *testing.T) {
	img := json.RawMessage(`{}`)
	cases := []struct {
		name   string
		rec    Record
		want   Kind
		asText string
	}{
		{"insert", Record{After: img}, KindInsert, "insert"},
		{"update", Record{Before: img, After: img}, KindUpdate, "update"},
		{"delete", Record{Before: img}, KindDelete, "delete"},
	}
	for _, tc := range cases {
		if got := tc.rec.Kind(); got != tc.want {
			t.Errorf("%s: Kind() = %v, want %v", tc.name, got, tc.want)
		}
		if got := tc.rec.Kind().String(); got != tc.asText {
			t.Errorf("%s: String() = %q, want %q", tc.name, got, tc.asText)
		}
	}
}

func TestClear(t *testing.T) {
	s := NewStack()
	b := batchWith("AD_Person")
	s.Push(b)
	s.Push(batchWith("TB_Ort"))
	s.ShiftToRedo(s.PeekUndo())

	s.Clear()
	if u, r := s.Depths(); u != 0 || r != 0 {
		t.Errorf("Depths() after Clear = (%d, %d), want (0, 0)", u, r)
	}
}
