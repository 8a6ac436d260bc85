package api

import (
	"context"

	"lacsverts/internal/types"

	"golang.org/x/sync/errgroup"
)

// ReportsBoard is what the reports page needs on mount.
type ReportsBoard struct {
	Reports []types.Report
	Lakes   []types.Lake
}

// LoadReportsBoard fetches the session's reports and the lake list
// concurrently. Each half degrades independently: a failed fetch leaves its
// slice empty and its error is returned alongside the partial board.
func (c *Client) LoadReportsBoard(ctx context.Context, token string) (ReportsBoard, error) {
	var board ReportsBoard
	var reportsErr, lakesErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		board.Reports, reportsErr = c.Reports(gctx, token)
		return nil
	})
	g.Go(func() error {
		board.Lakes, lakesErr = c.Lakes(gctx)
		return nil
	})
	_ = g.Wait()

	if reportsErr != nil {
		return board, reportsErr
	}
	return board, lakesErr
}
