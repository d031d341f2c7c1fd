package pdfcanvas

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// OpKind names a recorded draw call.
type OpKind string

const (
	OpPage  OpKind = "page"
	OpText  OpKind = "text"
	OpLine  OpKind = "line"
	OpImage OpKind = "image"
)

// Op is one recorded draw call with the font state it was issued under.
type Op struct {
	Kind  OpKind
	Page  int
	X, Y  float64
	W, H  float64
	Align Align
	Text  string
	Font  string
	Style string
	Size  float64
}

// Recorder is an in-memory Canvas. Text is measured with a fixed advance per
// rune scaled by the font size.
type Recorder struct {
	Ops []Op
	// RuneWidth is the advance of one rune at 10pt, in millimetres.
	RuneWidth float64
	// FailImages makes every Image call fail.
	FailImages bool

	page  int
	font  string
	style string
	size  float64
}

// NewRecorder creates a recorder with a 2mm advance at 10pt.
func NewRecorder() *Recorder {
	return &Recorder{RuneWidth: 2}
}

func (r *Recorder) AddPage() {
	r.page++
	r.Ops = append(r.Ops, Op{Kind: OpPage, Page: r.page})
}

func (r *Recorder) SetFont(family, style string, size float64) {
	r.font, r.style, r.size = family, style, size
}

func (r *Recorder) Text(x, y float64, align Align, text string) {
	r.Ops = append(r.Ops, r.op(Op{Kind: OpText, X: x, Y: y, Align: align, Text: text}))
}

func (r *Recorder) Line(x1, y1, x2, y2, width float64) {
	r.Ops = append(r.Ops, r.op(Op{Kind: OpLine, X: x1, Y: y1, W: x2 - x1, H: y2 - y1}))
}

func (r *Recorder) Image(data []byte, x, y, w, h float64) error {
	if r.FailImages {
		return errors.New("image rejected")
	}
	r.Ops = append(r.Ops, r.op(Op{Kind: OpImage, X: x, Y: y, W: w, H: h}))
	return nil
}

// SplitText breaks text on spaces so each line measures at most width. A
// word wider than width gets a line of its own.
func (r *Recorder) SplitText(text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if candidate := line + " " + word; r.measure(candidate) <= width {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}

// Output writes one line per recorded call.
func (r *Recorder) Output(w io.Writer) error {
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "%d %s %.1f,%.1f %q\n", op.Page, op.Kind, op.X, op.Y, op.Text); err != nil {
			return err
		}
	}
	return nil
}

// Texts returns the recorded text calls in order.
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}

// Pages returns the number of pages started.
func (r *Recorder) Pages() int {
	return r.page
}

func (r *Recorder) measure(s string) float64 {
	size := r.size
	if size == 0 {
		size = 10
	}
	return float64(utf8.RuneCountInString(s)) * r.RuneWidth * size / 10
}

func (r *Recorder) op(o Op) Op {
	o.Page = r.page
	o.Font, o.Style, o.Size = r.font, r.style, r.size
	return o
}
