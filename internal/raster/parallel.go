package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachRow calls fn on contiguous bands [y0, y1) covering [0, height),
// one band per worker. Bands never overlap, so fn may write its rows
// without locking.
func forEachRow(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}

	workers := min(runtime.GOMAXPROCS(0), height)
	if workers == 1 {
		fn(0, height)
		return
	}

	band := (height + workers - 1) / workers

	// The group is used for SetLimit, which caps in-flight bands at the
	// worker count. No band returns an error, so Wait is only a barrier.
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
