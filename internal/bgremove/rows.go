package bgremove

import (
	"context"

	"github.com/anthonynsimon/bild/parallel"
)

// forEachRow calls fn for every row in [0, height). With parallel set, rows
// are split into contiguous bands across GOMAXPROCS goroutines. fn must only
// write data owned by its row.
//
// The context is checked before each row; once it is done the remaining rows
// are skipped and its error is returned.
func forEachRow(ctx context.Context, height int, parallelRows bool, fn func(y int)) error {
	band := func(start, end int) {
		for y := start; y < end; y++ {
			if ctx.Err() != nil {
				return
			}
			fn(y)
		}
	}

	if parallelRows {
		parallel.Line(height, band)
	} else {
		band(0, height)
	}

	return ctx.Err()
}
