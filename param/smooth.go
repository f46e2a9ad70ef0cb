// package param smooths the synth's settings on their way from whoever is
// turning the knobs to the audio thread.
package param

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/constraints"
)

// Smoother moves a value towards a target over a number of samples instead of
// jumping to it.
type Smoother[T constraints.Float] interface {
	// SetTarget starts a new ramp from the current value.
	SetTarget(T)
	// Next advances by one sample and returns the new value.
	Next() T
	// Reset jumps straight to v.
	Reset(v T)
	fmt.Stringer
}

// samples returns how many samples d lasts, at least 1.
func samples(samplerate float32, d time.Duration) int {
	return max(1, int(d.Seconds()*float64(samplerate)))
}

// Linear ramps in a straight line, reaching the target after a fixed time
// regardless of how far away it is.
type Linear[T constraints.Float] struct {
	cur, target, step T
	steps, left       int
}

var _ Smoother[float32] = (*Linear[float32])(nil)

func NewLinear[T constraints.Float](samplerate float32, d time.Duration, v T) *Linear[T] {
	return &Linear[T]{cur: v, target: v, steps: samples(samplerate, d)}
}

func (l *Linear[T]) String() string {
	return fmt.Sprintf("Linear(%v->%v,%d/%d)", l.cur, l.target, l.left, l.steps)
}

func (l *Linear[T]) SetTarget(v T) {
	if v == l.target {
		return
	}
	l.target = v
	l.left = l.steps
	l.step = (v - l.cur) / T(l.steps)
}

func (l *Linear[T]) Next() T {
	if l.left > 0 {
		l.left--
		l.cur += l.step
		if l.left == 0 {
			l.cur = l.target
		}
	}
	return l.cur
}

func (l *Linear[T]) Reset(v T) {
	l.cur, l.target, l.left = v, v, 0
}

// Logarithmic ramps by a constant factor per sample, which sounds even for
// gains. Both the current value and the target must be positive; ramps
// where either isn't fall back to linear.
type Logarithmic[T constraints.Float] struct {
	cur, target, factor, step T
	linear                    bool
	steps, left               int
}

var _ Smoother[float32] = (*Logarithmic[float32])(nil)

func NewLogarithmic[T constraints.Float](samplerate float32, d time.Duration, v T) *Logarithmic[T] {
	return &Logarithmic[T]{cur: v, target: v, steps: samples(samplerate, d)}
}

func (l *Logarithmic[T]) String() string {
	return fmt.Sprintf("Logarithmic(%v->%v,%d/%d)", l.cur, l.target, l.left, l.steps)
}

func (l *Logarithmic[T]) SetTarget(v T) {
	if v == l.target {
		return
	}
	l.target = v
	l.left = l.steps
	l.linear = !(v > 0 && l.cur > 0)
	if l.linear {
		l.step = (v - l.cur) / T(l.steps)
		return
	}
	l.factor = T(math.Pow(float64(v/l.cur), 1/float64(l.steps)))
}

func (l *Logarithmic[T]) Next() T {
	if l.left > 0 {
		l.left--
		if l.linear {
			l.cur += l.step
		} else {
			l.cur *= l.factor
		}
		if l.left == 0 {
			l.cur = l.target
		}
	}
	return l.cur
}

func (l *Logarithmic[T]) Reset(v T) {
	l.cur, l.target, l.left = v, v, 0
}

// DBToGain converts decibels to a linear gain.
func DBToGain[T constraints.Float](db T) T {
	return T(math.Pow(10, float64(db)/20))
}

// GainToDB converts a linear gain to decibels. Gains of zero or less come out
// as -Inf.
func GainToDB[T constraints.Float](g T) T {
	if g <= 0 {
		return T(math.Inf(-1))
	}
	return T(20 * math.Log10(float64(g)))
}

func clamp[T constraints.Float](v, lo, hi T) T {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	case v != v:
		return lo
	}
	return v
}
