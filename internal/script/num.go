package script

import "math"

// Numeric parameter values are small infix expressions: literals,
// parentheses, unary minus and + - * /. In frequency positions a note
// name like A4, Cs5 or Ef2 (s sharp, f flat) is also a value, tuned by
// just intonation around the score's concert pitch.

// readNum parses an expression at the current position.
func (c *compiler) readNum(noteOK bool) (float64, error) {
	v, err := c.readSum(noteOK)
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (c *compiler) readSum(noteOK bool) (float64, error) {
	v, err := c.readProduct(noteOK)
	if err != nil {
		return 0, err
	}
	for {
		c.skipInlineSpace()
		switch c.peek() {
		case '+':
			c.next()
			w, err := c.readProduct(noteOK)
			if err != nil {
				return 0, err
			}
			v += w
		case '-':
			c.next()
			w, err := c.readProduct(noteOK)
			if err != nil {
				return 0, err
			}
			v -= w
		default:
			return v, nil
		}
	}
}

func (c *compiler) readProduct(noteOK bool) (float64, error) {
	v, err := c.readValue(noteOK)
	if err != nil {
		return 0, err
	}
	for {
		c.skipInlineSpace()
		switch c.peek() {
		case '*':
			c.next()
			w, err := c.readValue(noteOK)
			if err != nil {
				return 0, err
			}
			v *= w
		case '/':
			c.next()
			w, err := c.readValue(noteOK)
			if err != nil {
				return 0, err
			}
			v /= w
		default:
			return v, nil
		}
	}
}

func (c *compiler) readValue(noteOK bool) (float64, error) {
	c.skipInlineSpace()
	if c.eof() {
		return 0, c.errf("expected a number")
	}
	b := c.peek()
	switch {
	case b == '(':
		c.next()
		v, err := c.readSum(noteOK)
		if err != nil {
			return 0, err
		}
		c.skipInlineSpace()
		if !c.accept(')') {
			return 0, c.errf("missing closing parenthesis")
		}
		return v, nil
	case b == '-':
		c.next()
		v, err := c.readValue(noteOK)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case b >= '0' && b <= '9' || b == '.':
		return c.readLiteral()
	case noteOK && (b >= 'A' && b <= 'G' || b >= 'a' && b <= 'g'):
		return c.readNote()
	}
	return 0, c.errf("expected a number, got %q", b)
}

// skipInlineSpace eats spaces and tabs but not newlines, which end a
// statement at the score top level.
func (c *compiler) skipInlineSpace() {
	for c.pos < len(c.src) {
		b := c.src[c.pos]
		if b != ' ' && b != '\t' {
			break
		}
		c.pos++
	}
}

func (c *compiler) readLiteral() (float64, error) {
	v := 0.0
	digits := 0
	for c.pos < len(c.src) && c.src[c.pos] >= '0' && c.src[c.pos] <= '9' {
		v = v*10 + float64(c.src[c.pos]-'0')
		c.pos++
		digits++
	}
	if c.accept('.') {
		scale := 0.1
		for c.pos < len(c.src) && c.src[c.pos] >= '0' && c.src[c.pos] <= '9' {
			v += float64(c.src[c.pos]-'0') * scale
			scale /= 10
			c.pos++
			digits++
		}
	}
	if digits == 0 {
		return 0, c.errf("malformed number")
	}
	return v, nil
}

// just intonation ratios within an octave, per note letter C..B, with
// an extra entry for the octave above; rows are flat, natural, sharp
var noteRatios = [3][8]float64{
	{48.0 / 25, 16.0 / 15, 6.0 / 5, 32.0 / 25, 36.0 / 25, 8.0 / 5, 9.0 / 5, 96.0 / 25},
	{1, 10.0 / 9, 5.0 / 4, 4.0 / 3, 3.0 / 2, 5.0 / 3, 15.0 / 8, 2},
	{25.0 / 24, 75.0 / 64, 125.0 / 96, 25.0 / 18, 25.0 / 16, 225.0 / 128, 125.0 / 64, 25.0 / 12},
}

// readNote parses a pitch name into a frequency. An optional leading
// lowercase letter picks a microtonal subnote position between this
// note and the next; s or f after the letter selects sharp or flat; a
// trailing digit selects the octave, defaulting to 4.
func (c *compiler) readNote() (float64, error) {
	subnote := -1
	b := c.next()
	if b >= 'a' && b <= 'g' {
		subnote = (int(b) - 'c' + 7) % 7
		if c.eof() {
			return 0, c.errf("incomplete note name")
		}
		b = c.next()
	}
	if b < 'A' || b > 'G' {
		return 0, c.errf("note letter must be C, D, E, F, G, A or B")
	}
	note := (int(b) - 'C' + 7) % 7
	semitone := 1
	if c.peek() == 's' {
		c.next()
		semitone = 2
	} else if c.peek() == 'f' {
		c.next()
		semitone = 0
	}
	octave := 4
	if b := c.peek(); b >= '0' && b <= '9' {
		o, err := c.readLiteral()
		if err != nil {
			return 0, err
		}
		if o > 10 {
			return 0, c.errf("octave out of range 0-10")
		}
		octave = int(o)
	}
	freq := c.a4 * (3.0 / 5.0) // C4
	freq *= math.Pow(2, float64(octave-4)) * noteRatios[semitone][note]
	if subnote >= 0 {
		freq *= 1 + (noteRatios[semitone][note+1]/noteRatios[semitone][note]-1)*
			(noteRatios[1][subnote]-1)
	}
	return freq, nil
}
