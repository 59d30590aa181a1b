/*
Package qwave provides the data model of a waveform capture tool: per-bit
sample buffers, signals bound to them, a tree of scopes, and documents that
can be loaded from and saved to value change dump (VCD) files.

Samples are stored densely, one byte per bit per sample. Logic signals use the
levels Low, High, HighZ and Unknown; linear signals store raw 0..255
magnitudes on a single bit.

Signals declared with the same alias share the same Buffer: writes through one
are visible through the others. The first signal declared for an alias owns
the buffer, the others are shadows.

A VCD file only records changes. Load fills the gaps between changes with the
last written value, so that every bit of every signal holds one sample per
time step up to the last time marker. Save does the reverse and only writes
the samples where a signal changes.

*/
package qwave
