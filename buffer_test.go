package qwave_test

import (
	"testing"
	"testing/quick"

	qw "github.com/josko7452/qwave-project"
)

func TestBuffer_growth(t *testing.T) {
	b := qw.NewBuffer(2)
	if b.Width() != 2 {
		t.Fatalf("Width() = %d, expected 2", b.Width())
	}
	for i := 0; i < qw.InitialCapacity; i++ {
		b.Append(0, byte(i))
	}
	if c := b.Cap(0); c != qw.InitialCapacity {
		t.Fatalf("Cap(0) = %d, expected %d", c, qw.InitialCapacity)
	}
	b.Append(0, 42)
	if c := b.Cap(0); c != 2*qw.InitialCapacity {
		t.Fatalf("Cap(0) after growth = %d, expected %d", c, 2*qw.InitialCapacity)
	}
	if l := b.Len(0); l != qw.InitialCapacity+1 {
		t.Fatalf("Len(0) = %d, expected %d", l, qw.InitialCapacity+1)
	}
	for i := 0; i < qw.InitialCapacity; i++ {
		if v := b.At(0, i); v != byte(i) {
			t.Fatalf("At(0, %d) = %d after growth", i, v)
		}
	}
	if b.At(0, qw.InitialCapacity) != 42 {
		t.Fatal("lost last appended value")
	}
	if b.Len(1) != 0 || b.MaxLen() != qw.InitialCapacity+1 {
		t.Fatalf("Len(1) = %d, MaxLen() = %d", b.Len(1), b.MaxLen())
	}
}

func TestBuffer_append(t *testing.T) {
	f := func(vs []byte) bool {
		b := qw.NewBuffer(1)
		for _, v := range vs {
			b.Append(0, v)
		}
		if b.Len(0) != len(vs) {
			return false
		}
		for i, v := range vs {
			if b.At(0, i) != v {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
		t.Fatal(err)
	}
}
