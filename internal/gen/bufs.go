package gen

// Scratch buffers are claimed in a fixed pattern by runBlock: index 0 is
// the output accumulator, index 1 the frequency buffer, and modulator
// sub-graphs get the remaining tail. calcBufs simulates that claiming
// exactly, so the pool it sizes can never come up short for the graph it
// was sized against.

const bufLen = 256

type buf [bufLen]float32

type bufFrame struct {
	n    *soundNode
	base int
	env  bool
}

// calcBufs returns the number of scratch buffers needed to render n's
// full modulation graph. The walk is iterative over an explicit frame
// stack; graph depth is bounded at program validation, not here.
func calcBufs(root *soundNode) int {
	high := 0
	stack := []bufFrame{{n: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for n := f.n; n != nil; n = n.link {
			next := f.base + 2 // accumulator plus frequency buffer
			if next > high {
				high = next
			}
			if n.fmods != nil {
				stack = append(stack, bufFrame{n.fmods, next, true})
			}
			if n.pmods != nil {
				stack = append(stack, bufFrame{n.pmods, next, false})
				next++
			}
			if !f.env {
				if n.amods != nil {
					stack = append(stack, bufFrame{n.amods, next, true})
				}
				next++ // amplitude buffer
			}
			if next > high {
				high = next
			}
		}
	}
	return high
}

// upsizeBufs grows the pool to cover n's graph. The pool never shrinks;
// buffers are block-lifetime scratch shared by all voices.
func (g *Generator) upsizeBufs(n *soundNode) {
	count := calcBufs(n)
	for len(g.bufs) < count {
		g.bufs = append(g.bufs, buf{})
	}
}
