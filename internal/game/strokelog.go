package game

import "errors"

// Point is one canvas sample: x, y, pressure.
type Point [3]float64

// ErrClosedStroke is returned when a point targets a stroke older than the
// most recent one; strokes are append-only in non-decreasing index order.
var ErrClosedStroke = errors.New("stroke already closed")

// StrokeLog is the append-only canvas history for one turn, plus the
// broadcast cursor marking how much of it has already been sent to
// non-drawer viewers. Each stroke carries the index the drawer's client
// assigned it; client indices are non-decreasing but may skip values (the
// client's counter keeps counting across an undo), so strokes are keyed by
// that index, not by array position.
type StrokeLog struct {
	strokes      [][]Point
	indexes      []int
	cursorStroke int
	cursorPoint  int
}

func NewStrokeLog() *StrokeLog {
	return &StrokeLog{}
}

// openIndex is the client index of the stroke currently open for appends,
// or -1 when the log is empty.
func (l *StrokeLog) openIndex() int {
	if len(l.indexes) == 0 {
		return -1
	}
	return l.indexes[len(l.indexes)-1]
}

// AddPoint appends a point to the identified stroke, opening a new stroke
// when the index moves past the open one.
func (l *StrokeLog) AddPoint(stroke int, p Point) error {
	if stroke < 0 {
		return ErrClosedStroke
	}
	switch open := l.openIndex(); {
	case stroke == open:
		last := len(l.strokes) - 1
		l.strokes[last] = append(l.strokes[last], p)
	case stroke > open:
		l.strokes = append(l.strokes, []Point{p})
		l.indexes = append(l.indexes, stroke)
	default:
		return ErrClosedStroke
	}
	return nil
}

// Delta is one increment of canvas state for a viewer who already has
// everything before the cursor: the tail of the stroke that was open at the
// cursor, plus any strokes started since.
type Delta struct {
	ExistingStroke []Point   `json:"existingStroke,omitempty"`
	NewPoints      [][]Point `json:"newPoints,omitempty"`
}

func (d Delta) Empty() bool {
	return len(d.ExistingStroke) == 0 && len(d.NewPoints) == 0
}

// Diff computes the delta since the last broadcast and advances the cursor
// to the end of the log.
func (l *StrokeLog) Diff() Delta {
	var d Delta
	if len(l.strokes) == 0 {
		return d
	}
	open := l.strokes[l.cursorStroke]
	if l.cursorPoint < len(open) {
		d.ExistingStroke = append([]Point(nil), open[l.cursorPoint:]...)
	}
	for _, stroke := range l.strokes[l.cursorStroke+1:] {
		d.NewPoints = append(d.NewPoints, append([]Point(nil), stroke...))
	}
	l.cursorStroke = len(l.strokes) - 1
	l.cursorPoint = len(l.strokes[l.cursorStroke])
	return d
}

// Undo removes exactly the most recent stroke. If the cursor had advanced
// into that stroke it is retracted to the end of the prior one, so later
// diffs stay consistent. Reports whether a stroke was removed.
func (l *StrokeLog) Undo() bool {
	if len(l.strokes) == 0 {
		return false
	}
	last := len(l.strokes) - 1
	if l.cursorStroke >= last {
		if last == 0 {
			l.cursorStroke, l.cursorPoint = 0, 0
		} else {
			l.cursorStroke = last - 1
			l.cursorPoint = len(l.strokes[last-1])
		}
	}
	l.strokes = l.strokes[:last]
	l.indexes = l.indexes[:last]
	return true
}

// Clear drops the whole log and resets the cursor.
func (l *StrokeLog) Clear() {
	l.strokes = nil
	l.indexes = nil
	l.cursorStroke = 0
	l.cursorPoint = 0
}

// Strokes returns a copy of the full canvas history.
func (l *StrokeLog) Strokes() [][]Point {
	if len(l.strokes) == 0 {
		return nil
	}
	out := make([][]Point, len(l.strokes))
	for i, stroke := range l.strokes {
		out[i] = append([]Point(nil), stroke...)
	}
	return out
}

func (l *StrokeLog) Len() int {
	return len(l.strokes)
}
