package qwave_test

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	qw "github.com/josko7452/qwave-project"
	"github.com/josko7452/qwave-project/wavetest"
)

func save(t *testing.T, d *qw.Document) string {
	t.Helper()
	var b bytes.Buffer
	if err := d.Save(&b); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

func TestSave(t *testing.T) {
	d := qw.New()
	clk := qw.NewSignal(qw.Logic, "clk", 1, '!', 1000)
	appendAll(clk, 0, L, L, H, H, H)
	r := qw.NewSignal(qw.Logic, "r", 2, '"', 1000)
	appendAll(r, 0, L, L, L, H, H)
	appendAll(r, 1, H, H, H, H, H)
	for _, s := range []*qw.Signal{clk, r} {
		if err := d.Register(s); err != nil {
			t.Fatal(err)
		}
	}
	want := `$timescale 1000 ps $end
$scope module top $end
$var wire 1 ! clk $end
$var reg 2 " r $end
$upscope $end
$enddefinitions $end
$dumpvars
0!
b01 "
$end
#2
1!
#3
b11 "
#4
`
	if got := save(t, d); got != want {
		t.Fatalf("got:\n%s\nexpected:\n%s", got, want)
	}
}

func TestSave_header(t *testing.T) {
	d := qw.New()
	d.Date = "today"
	d.Comment = "two words"
	d.Timescale = 10000
	got := save(t, d)
	want := "$date\n today\n$end\n$comment\n two words\n$end\n$timescale 10000 ps $end\n"
	if !strings.HasPrefix(got, want) {
		t.Fatalf("got:\n%s\nexpected prefix:\n%s", got, want)
	}
	if !strings.HasSuffix(got, "$dumpvars\n$end\n") {
		t.Fatalf("bad dump for an empty document:\n%s", got)
	}
	d2 := load(t, got)
	if d2.Date != d.Date || d2.Comment != d.Comment || d2.Timescale != d.Timescale {
		t.Fatalf("header mismatch: %q %q %d", d2.Date, d2.Comment, d2.Timescale)
	}
}

// constant signals produce a single dump followed by the end marker.
func TestSave_constant(t *testing.T) {
	d := qw.New()
	s := qw.NewSignal(qw.Linear, "ch0", 8, 'a', 8000)
	for i := 0; i < 1000; i++ {
		s.Append(0, 77)
	}
	if err := d.Register(s); err != nil {
		t.Fatal(err)
	}
	got := save(t, d)
	if !strings.HasSuffix(got, "$dumpvars\nr77 a\n$end\n#999\n") {
		t.Fatalf("got:\n%s", got)
	}
	if d2 := load(t, got); d2.Len() != 1000 {
		t.Fatalf("reloaded Len() = %d", d2.Len())
	}
}

// at each time marker, only the aliases that changed are dumped, each once.
func TestSave_changedOnly(t *testing.T) {
	d := load(t, `$scope module top $end
$var reg 3 ! data $end
$var wire 1 ! data0 $end
$var wire 1 " a $end
$var wire 1 # b $end
$upscope $end
$enddefinitions $end
$dumpvars b000 ! 0" 0# $end
#5 1#
#9 b100 !
#12
`)
	got := save(t, d)
	dump := got[strings.Index(got, "\n#5")+1:]
	want := "#5\n1#\n#9\nb100 !\n#12\n"
	if dump != want {
		t.Fatalf("got:\n%s\nexpected:\n%s", dump, want)
	}
}

func TestSave_roundTrip(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		r := rand.New(rand.NewSource(seed))
		d := wavetest.RandomDocument(r, 50+r.Intn(500))
		out := save(t, d)
		d2 := load(t, out)
		if d2.Date != d.Date || d2.Version != d.Version || d2.Timescale != d.Timescale {
			t.Fatalf("seed %d: header mismatch", seed)
		}
		wavetest.CompareDocuments(t, d, d2)
		if out2 := save(t, d2); out2 != out {
			t.Fatalf("seed %d: second save differs", seed)
		}
	}
}

func TestRegister(t *testing.T) {
	d := qw.New()
	a, err := d.NextAlias()
	if err != nil || a != '!' {
		t.Fatalf("NextAlias() = %q, %v", a, err)
	}
	if err = d.Register(qw.NewSignal(qw.Logic, "a", 1, a, 1)); err != nil {
		t.Fatal(err)
	}
	if err = d.Register(qw.NewSignal(qw.Logic, "b", 1, a, 1)); err == nil {
		t.Fatal("registered a duplicate alias")
	}
	if a, _ = d.NextAlias(); a != '"' {
		t.Fatalf("NextAlias() = %q", a)
	}
	for {
		a, err = d.NextAlias()
		if err != nil {
			break
		}
		if err = d.Register(qw.NewSignal(qw.Logic, "s", 1, a, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(d.Top().Signals()); n != '~'-'!'+1 {
		t.Fatalf("registered %d signals", n)
	}
}

func TestSave_aliasConflict(t *testing.T) {
	d := qw.New()
	a := qw.NewSignal(qw.Logic, "a", 1, '!', 1)
	if err := d.Register(a); err != nil {
		t.Fatal(err)
	}
	// bypasses Register
	d.Top().AddScope("sub").AddSignal(qw.NewSignal(qw.Logic, "b", 1, '!', 1))
	var b strings.Builder
	if err := d.Save(&b); err == nil {
		t.Fatal("expected error")
	}
	if b.Len() != 0 {
		t.Fatalf("partial output: %q", b.String())
	}

	// a shadow shares the buffer and saves fine.
	d = qw.New()
	if err := d.Register(a); err != nil {
		t.Fatal(err)
	}
	d.Top().AddSignal(qw.NewShadow(a, qw.Logic, "a_alias", 1, 1))
	if err := d.Save(&b); err != nil {
		t.Fatal(err)
	}
}
