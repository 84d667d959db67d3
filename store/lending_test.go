package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"equipment_lending_client/models"
)

func TestLoadLendingDataSurvivesSupersededHalf(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.requests = []models.BorrowRequest{
		{ID: "r1", UserID: "alice", EquipmentID: "cam", Quantity: 1, Status: models.RequestPending},
	}
	a := signedIn(t, api)

	started := make(chan struct{})
	var calls atomic.Int32
	api.listEquipment = func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}

	type result struct {
		requests []models.BorrowRequest
		err      error
	}
	done := make(chan result, 1)
	go func() {
		_, reqs, err := a.LoadLendingData(context.Background())
		done <- result{reqs, err}
	}()
	<-started
	if _, err := a.FetchEquipment(context.Background()); err != nil {
		t.Fatalf("FetchEquipment: %v", err)
	}

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("LoadLendingData did not return")
	}
	if res.err != nil {
		t.Fatalf("LoadLendingData err = %v, want nil", res.err)
	}
	if len(res.requests) != 1 || res.requests[0].ID != "r1" {
		t.Fatalf("requests = %+v, want [r1]", res.requests)
	}
	st := a.Store.Snapshot()
	if st.Requests.Error != "" || len(st.Requests.Items) != 1 {
		t.Fatalf("request state = %+v", st.Requests)
	}
	if len(st.Alerts) != 0 {
		t.Fatalf("alerts = %+v, want none", st.Alerts)
	}
}

func TestCancelledCallerRaisesNoAlert(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	a := signedIn(t, api)
	api.listEquipment = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := a.LoadLendingData(ctx); err == nil {
		t.Fatal("LoadLendingData with a cancelled context succeeded")
	}
	if alerts := a.Store.Alerts.List(); len(alerts) != 0 {
		t.Fatalf("alerts = %+v, want none", alerts)
	}
}
