package pitch

import (
	"fmt"
	"math"
	"strconv"
)

/*
 * Global constants.
 */
const (
	A4_NUMBER = 69
	A4        = 440.0
)

/*
 * Names of the twelve notes of an octave, starting at C.
 */
var names = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

/*
 * Data structure representing the closest equal-tempered note to a frequency.
 */
type Note struct {
	Number int
	Name   string
	Octave int
	Cents  float64
}

/*
 * Returns the fractional note number of a frequency.
 *
 * n(f) = 12 * log2(f / a4) + 69
 */
func Number(freq float64, a4 float64) float64 {
	return 12.0*math.Log2(freq/a4) + A4_NUMBER
}

/*
 * Returns the equal-tempered frequency of a note number.
 *
 * f(n) = 2^((n - 69) / 12) * a4
 */
func Frequency(number int, a4 float64) float64 {
	steps := float64(number - A4_NUMBER)
	return a4 * math.Pow(2.0, steps/12.0)
}

/*
 * Returns the name and octave of a note number, e.g. "E2" for 40.
 */
func Name(number int) string {
	octave, idx := split(number)
	return names[idx] + strconv.Itoa(octave)
}

/*
 * Splits a note number into octave and position within the octave.
 */
func split(number int) (int, int) {
	idx := ((number % 12) + 12) % 12
	octave := (number-idx)/12 - 1
	return octave, idx
}

/*
 * Finds the closest note to a frequency.
 *
 * Returns false for frequencies which are not positive and finite.
 */
func FromFrequency(freq float64, a4 float64) (Note, bool) {
	n := Number(freq, a4)

	/*
	 * This happens for zero, negative and non-finite input.
	 */
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Note{}, false
	}

	number := int(math.Floor(n + 0.5))
	octave, idx := split(number)
	note := Note{
		Number: number,
		Name:   names[idx],
		Octave: octave,
		Cents:  100.0 * (n - float64(number)),
	}

	return note, true
}

/*
 * Returns the note name with its octave.
 */
func (this Note) Label() string {
	return this.Name + strconv.Itoa(this.Octave)
}

/*
 * Formats the note as name, octave, number and signed cents, e.g. "A4 69+03".
 */
func (this Note) String() string {
	cents := math.Round(this.Cents)
	sign := " "

	/*
	 * Zero cents carries no sign.
	 */
	if cents < 0 {
		sign = "-"
	} else if cents > 0 {
		sign = "+"
	}

	return fmt.Sprintf("%-3s%2d %3d%s%02.0f", this.Name, this.Octave, this.Number, sign, math.Abs(cents))
}
