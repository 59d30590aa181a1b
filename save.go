// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/josko7452/qwave-project/internal/vcd"
	"github.com/pkg/errors"
)

// Save writes d to w in value change dump format.
//
// Only transitions are written: at each dumped sample, the aliases of the
// signals whose value changed since the previous sample. If the document
// extends past its last transition, a final time marker records its length.
//
// Signals sharing an alias must share the same Buffer. Save fails otherwise,
// since the dump could not tell them apart. Signals added with Register get a
// unique alias.
//
func (d *Document) Save(w io.Writer) error {
	if err := d.checkAliases(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	writeText(bw, vcd.KwDate, d.Date)
	writeText(bw, vcd.KwVersion, d.Version)
	writeText(bw, vcd.KwComment, d.Comment)
	bw.WriteString(vcd.KwTimescale + " " + strconv.FormatUint(d.SampleTimescale(), 10) + " ps " + vcd.KwEnd + "\n")
	for _, sc := range d.root.children {
		writeScope(bw, sc)
	}
	bw.WriteString(vcd.KwEndDefinitions + " " + vcd.KwEnd + "\n")
	bw.WriteString(vcd.KwDumpVars + "\n")
	d.writeDump(bw)
	return errors.Wrap(bw.Flush(), "save")
}

func (d *Document) checkAliases() error {
	var bufs [256]*Signal
	for _, s := range d.Signals() {
		src := bufs[s.alias]
		if src == nil {
			bufs[s.alias] = s
			continue
		}
		if src.buf != s.buf {
			return errors.Errorf("save: variables %q and %q share alias %q but not their samples", src.name, s.name, s.alias)
		}
	}
	return nil
}

// SaveFile saves d to the named file.
//
func (d *Document) SaveFile(name string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "save")
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrap(cerr, "save")
		}
	}()
	return d.Save(f)
}

func writeText(w *bufio.Writer, kw, text string) {
	if text == "" {
		return
	}
	w.WriteString(kw + "\n " + text + "\n" + vcd.KwEnd + "\n")
}

func writeScope(w *bufio.Writer, s *Scope) {
	w.WriteString(vcd.KwScope + " " + vcd.KwModule + " " + s.name + " " + vcd.KwEnd + "\n")
	s.writeDeclarations(w)
	for _, c := range s.children {
		writeScope(w, c)
	}
	w.WriteString(vcd.KwUpscope + " " + vcd.KwEnd + "\n")
}

func (d *Document) writeDump(w *bufio.Writer) {
	t := 0
	for {
		for _, a := range d.ChangedAliasesAt(t) {
			if sig := d.source(a); sig != nil {
				writeValue(w, sig, t)
			}
		}
		if t == 0 {
			w.WriteString(vcd.KwEnd + "\n")
		}
		next := d.NearestTransition(t)
		if next == NoTransition {
			break
		}
		t = next
		w.WriteString("#" + strconv.Itoa(t) + "\n")
	}
	if end := d.Len() - 1; end > t {
		w.WriteString("#" + strconv.Itoa(end) + "\n")
	}
}

// levelChar is the inverse of level.
//
func levelChar(v byte) byte {
	switch v {
	case Low:
		return '0'
	case High:
		return '1'
	case HighZ:
		return 'u'
	}
	return 'x'
}

func writeValue(w *bufio.Writer, sig *Signal, t int) {
	switch {
	case sig.typ == Linear:
		w.WriteByte('r')
		w.WriteString(strconv.Itoa(int(sig.held(0, t))))
		w.WriteByte(' ')
	case sig.buf.Width() > 1:
		w.WriteByte('b')
		for bit := 0; bit < sig.buf.Width(); bit++ {
			w.WriteByte(levelChar(sig.held(bit, t)))
		}
		w.WriteByte(' ')
	default:
		w.WriteByte(levelChar(sig.held(0, t)))
	}
	w.WriteByte(sig.alias)
	w.WriteByte('\n')
}
