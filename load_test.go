package qwave_test

import (
	"strings"
	"testing"

	qw "github.com/josko7452/qwave-project"
	"github.com/pkg/errors"
)

func trace(t *testing.T, err error) {
	t.Helper()
	if err, ok := err.(interface {
		StackTrace() errors.StackTrace
	}); ok {
		for _, f := range err.StackTrace() {
			t.Logf("%+v ", f)
		}
	}
}

func load(t *testing.T, src string) *qw.Document {
	t.Helper()
	d, err := qw.Load(strings.NewReader(src), "test.vcd")
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	return d
}

func checkBit(t *testing.T, s *qw.Signal, bit int, want ...byte) {
	t.Helper()
	if l := s.Len(bit); l != len(want) {
		t.Fatalf("%s: Len(%d) = %d, expected %d", s.Name(), bit, l, len(want))
	}
	for i, w := range want {
		if v := s.ValueAt(bit, i); v != w {
			t.Fatalf("%s: bit %d, sample %d = %d, expected %d", s.Name(), bit, i, v, w)
		}
	}
}

const (
	L = qw.Low
	H = qw.High
	Z = qw.HighZ
	X = qw.Unknown
)

func TestLoad(t *testing.T) {
	d := load(t, `$date
  Sat Oct 17
  2026
$end
$timescale 10ns $end
$scope module top $end
$var wire 1 ! clk $end
$var reg 4 " data $end
$var real 8 # ch0 $end
$scope module sub $end
$var wire 1 " data0 $end
$upscope $end
$var wire 1 % late $end
$upscope $end
$enddefinitions $end
#0
$dumpvars
0!
b0001 "
r12 #
$end
#3
1!
#5
b1x0z "
$comment mid dump $end
#7
r200 #
`)
	if d.Date != "Sat Oct 17 2026" {
		t.Errorf("Date = %q", d.Date)
	}
	if d.Timescale != 10000 {
		t.Errorf("Timescale = %d", d.Timescale)
	}
	if n := len(d.Root().Scopes()); n != 1 {
		t.Fatalf("%d top level scopes", n)
	}
	top := d.Top()
	if top.Name() != "top" || len(top.Signals()) != 4 || len(top.Scopes()) != 1 {
		t.Fatalf("bad top scope: %q, %d signals, %d scopes", top.Name(), len(top.Signals()), len(top.Scopes()))
	}
	ss := top.Signals()
	clk, data, ch0, late := ss[0], ss[1], ss[2], ss[3]
	data0 := top.Scopes()[0].Signals()[0]

	checkBit(t, clk, 0, L, L, L, H, H, H, H, H)
	checkBit(t, data, 0, L, L, L, L, L, H, H, H)
	checkBit(t, data, 1, L, L, L, L, L, X, X, X)
	checkBit(t, data, 2, L, L, L, L, L, L, L, L)
	checkBit(t, data, 3, H, H, H, H, H, Z, Z, Z)
	checkBit(t, ch0, 0, 12, 12, 12, 12, 12, 12, 12, 200)
	checkBit(t, late, 0, X, X, X, X, X, X, X, X)

	if !data0.Shadow() || data0.Buffer() != data.Buffer() || data0.Width() != 1 {
		t.Fatal("data0 is not a shadow of data")
	}
	if ch0.Type() != qw.Linear || ch0.Buffer().Width() != 1 || ch0.Width() != 8 {
		t.Fatal("bad real variable")
	}
	if clk.Divisor() != 10000 {
		t.Fatalf("Divisor() = %d", clk.Divisor())
	}
	if s, ok := d.Lookup('"'); !ok || s != data {
		t.Fatal("alias map does not point to the first declaration")
	}
	if d.Len() != 8 {
		t.Fatalf("Len() = %d", d.Len())
	}
}

// every store is filled up to and including the last time marker, whatever
// its own last write.
func TestLoad_finalFill(t *testing.T) {
	d := load(t, `$scope module top $end
$var wire 1 ! a $end
$var reg 2 " b $end
$upscope $end
$enddefinitions $end
$dumpvars 0! b00 " $end
#2 1!
#7 b11 "
#10
`)
	ss := d.Top().Signals()
	checkBit(t, ss[0], 0, L, L, H, H, H, H, H, H, H, H, H)
	checkBit(t, ss[1], 0, L, L, L, L, L, L, L, H, H, H, H)
	checkBit(t, ss[1], 1, L, L, L, L, L, L, L, H, H, H, H)
}

func TestLoad_dumpSections(t *testing.T) {
	d := load(t, `$scope module top $end
$var wire 1 ! a $end
$upscope $end
$enddefinitions $end
$dumpvars
1!
0!
$end
#1
$dumpoff
x!
$end
#2
$dumpon
1!
$end
`)
	// the second write at #0 replaces the first
	checkBit(t, d.Top().Signals()[0], 0, L, X, H)
}

func TestLoad_empty(t *testing.T) {
	d := load(t, "$enddefinitions $end $dumpvars $end")
	if d.Top() != nil || d.Len() != 0 {
		t.Fatal("expected empty document")
	}
}

func TestLoad_rawBytes(t *testing.T) {
	src := "$scope module top $end\n" +
		"$var wire 1 ! n\xe9 $end\n" +
		"$var wire 1 \xe9 a $end\n" +
		"$upscope $end\n$enddefinitions $end\n" +
		"$dumpvars\n1!\n0\xe9\n$end\n#2\n1\xe9\n"
	d := load(t, src)
	ss := d.Top().Signals()
	if len(ss) != 2 || ss[0].Name() != "n\xe9" || ss[1].Alias() != 0xe9 {
		t.Fatalf("bad declarations: %q", []string{ss[0].Name(), ss[1].Name()})
	}
	checkBit(t, ss[1], 0, L, L, H)

	var b strings.Builder
	if err := d.Save(&b); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{" ! n\xe9 $end\n", " \xe9 a $end\n", "#2\n1\xe9\n"} {
		if !strings.Contains(b.String(), s) {
			t.Errorf("saved output lacks %q", s)
		}
	}
}

const hdr = `$timescale 1ns $end
$scope module top $end
$var wire 1 ! a $end
$var reg 2 " b $end
$var real 1 # c $end
$upscope $end
$enddefinitions $end
`

func TestLoad_errors(t *testing.T) {
	data := []struct {
		name string
		src  string
		line int // 0: don't check
	}{
		{"unknown_directive", "foo", 1},
		{"bad_timescale", "$timescale 10xs $end", 1},
		{"unterminated_date", "$date today", 0},
		{"unbalanced_upscope", "$upscope $end", 1},
		{"missing_upscope", "$scope module top $end\n$var wire 1 ! a $end\n$enddefinitions $end", 3},
		{"missing_scope_name", "$scope module $end", 1},
		{"bad_var_type", "$scope module t $end\n$var integer 1 ! a $end", 2},
		{"bad_width", "$scope module t $end\n$var wire 0 ! a $end", 2},
		{"bad_alias", "$scope module t $end\n$var wire 1 ab a $end", 2},
		{"missing_end", "$scope module t $end\n$var wire 1 ! a b $end", 2},
		{"wider_shadow", "$scope module t $end\n$var wire 1 ! a $end\n$var reg 2 ! b $end", 3},
		{"shadow_type", "$scope module t $end\n$var wire 1 ! a $end\n$var real 1 ! b $end", 3},
		{"missing_dumpvars", hdr + "0!", 8},
		{"unknown_alias", hdr + "$dumpvars\n1? $end", 9},
		{"bad_value", hdr + "$dumpvars\n2! $end", 9},
		{"bad_vector_value", hdr + "$dumpvars\nb1q \" $end", 9},
		{"wide_vector", hdr + "$dumpvars\nb101 \"\n$end", 9},
		{"vector_for_real", hdr + "$dumpvars\nb1 #\n$end", 9},
		{"missing_alias", hdr + "$dumpvars\nb1", 0},
		{"real_range", hdr + "$dumpvars\nr256 #\n$end", 9},
		{"real_for_wire", hdr + "$dumpvars\nr1 !\n$end", 9},
		{"scalar_for_real", hdr + "$dumpvars\n1#\n$end", 9},
		{"long_scalar", hdr + "$dumpvars\n1!!\n$end", 9},
		{"time_backwards", hdr + "$dumpvars 0! $end\n#5\n#3\n", 10},
		{"bad_time", hdr + "$dumpvars 0! $end\n#x\n", 9},
		{"unterminated_dumpvars", hdr + "$dumpvars\n0!\n", 0},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			doc, err := qw.Load(strings.NewReader(d.src), "")
			if err == nil {
				t.Fatal("expected error")
			}
			if doc != nil {
				t.Fatal("got a document along with an error")
			}
			pe, ok := qw.AsParseError(err)
			if !ok {
				t.Fatalf("not a parse error: %v", err)
			}
			if d.line != 0 && pe.Line != d.line {
				t.Fatalf("error at line %d, expected %d: %v", pe.Line, d.line, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	d, err := qw.LoadFile("testdata/counter.vcd")
	if err != nil {
		trace(t, err)
		t.Fatal(err)
	}
	if d.Timescale != 8000 || d.Len() != 8 {
		t.Fatalf("Timescale = %d, Len() = %d", d.Timescale, d.Len())
	}
	if d.Version != "qwave simulated capture" {
		t.Fatalf("Version = %q", d.Version)
	}
	count := d.Top().Signals()[1]
	checkBit(t, count, 3, L, H, H, L, L, H, H, L)
	checkBit(t, count, 1, L, L, L, L, L, L, L, H)

	_, err = qw.LoadFile("testdata/missing.vcd")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := qw.AsParseError(err); ok {
		t.Fatal("I/O error reported as parse error")
	}
}
