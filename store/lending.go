package store

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"equipment_lending_client/models"
)

// LoadLendingData refreshes equipment and requests side by side. Either half
// that a newer fetch supersedes is taken from the snapshot that fetch writes.
// The two fetches never cancel each other.
func (a *Actions) LoadLendingData(ctx context.Context) ([]models.Equipment, []models.BorrowRequest, error) {
	var (
		equipment []models.Equipment
		requests  []models.BorrowRequest
		eqStale   bool
		reqStale  bool
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		equipment, err = a.FetchEquipment(ctx)
		if errors.Is(err, ErrSuperseded) {
			eqStale, err = true, nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		requests, err = a.FetchRequests(ctx)
		if errors.Is(err, ErrSuperseded) {
			reqStale, err = true, nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if eqStale || reqStale {
		snap := a.Store.Snapshot()
		if eqStale {
			equipment = snap.Equipment.Items
		}
		if reqStale {
			requests = snap.Requests.Items
		}
	}
	return equipment, requests, nil
}
