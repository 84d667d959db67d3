package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"equipment_lending_client/models"
	"equipment_lending_client/rules"
)

func (a *Actions) FetchRequests(ctx context.Context) ([]models.BorrowRequest, error) {
	items, err := fetch(ctx, a.Store, resRequests,
		func(st *State) { st.Requests.Loading = true },
		a.client().ListRequests,
		func(st *State, items []models.BorrowRequest) {
			if items == nil {
				items = []models.BorrowRequest{}
			}
			st.Requests = RequestState{Items: items, Selected: st.Requests.Selected}
		},
		func(st *State, err error) {
			st.Requests.Loading = false
			st.Requests.Error = err.Error()
		},
	)
	return items, a.failure(err, msgLoadRequests)
}

func (a *Actions) GetRequest(ctx context.Context, id string) (models.BorrowRequest, error) {
	api := a.client()
	r, err := fetch(ctx, a.Store, resRequestItem,
		func(st *State) { st.Requests.Loading = true },
		func(ctx context.Context) (models.BorrowRequest, error) { return api.GetRequest(ctx, id) },
		func(st *State, r models.BorrowRequest) {
			st.Requests.Selected = &r
			st.Requests.Loading = false
			st.Requests.Error = ""
		},
		func(st *State, err error) {
			st.Requests.Loading = false
			st.Requests.Error = err.Error()
		},
	)
	return r, a.failure(err, msgLoadRequests)
}

// requestsForRules returns a fresh request list when the backend answers and
// the cached one when a newer fetch overtook this one.
func (a *Actions) requestsForRules(ctx context.Context) ([]models.BorrowRequest, error) {
	items, err := a.FetchRequests(ctx)
	if errors.Is(err, ErrSuperseded) {
		return a.Store.Snapshot().Requests.Items, nil
	}
	return items, err
}

func (a *Actions) equipmentByID(ctx context.Context, id string) (models.Equipment, error) {
	for _, e := range a.Store.Snapshot().Equipment.Items {
		if e.ID == id {
			return e, nil
		}
	}
	return a.client().GetEquipment(ctx, id)
}

// Eligibility evaluates the borrow limits against the cached requests.
func (a *Actions) Eligibility(equipmentID string, quantity int) (rules.Eligibility, error) {
	u, err := a.user()
	if err != nil {
		return rules.Eligibility{}, err
	}
	return rules.CheckEligibility(a.Store.Snapshot().Requests.Items, u.ID, equipmentID, quantity), nil
}

// SubmitRequest validates the draft, checks the borrow limits against a fresh
// request list and only then creates the request.
func (a *Actions) SubmitRequest(ctx context.Context, draft models.BorrowDraft) (models.BorrowRequest, error) {
	u, err := a.user()
	if err != nil {
		return models.BorrowRequest{}, err
	}
	eq, err := a.equipmentByID(ctx, draft.EquipmentID)
	if err != nil {
		return models.BorrowRequest{}, a.failure(err, msgSubmitRequest)
	}
	if err := draft.Validate(a.now(), eq); err != nil {
		return models.BorrowRequest{}, err
	}

	requests, err := a.requestsForRules(ctx)
	if err != nil {
		return models.BorrowRequest{}, err
	}
	if err := rules.CheckEligibility(requests, u.ID, eq.ID, draft.Quantity).Err(); err != nil {
		var inel *rules.IneligibleError
		if errors.As(err, &inel) {
			a.notify(models.SeverityError, inel.Message())
		}
		return models.BorrowRequest{}, err
	}

	created, err := a.client().CreateRequest(ctx, models.NewBorrowRequest{
		UserID:        u.ID,
		UserName:      u.Name,
		EquipmentID:   eq.ID,
		EquipmentName: eq.Name,
		Quantity:      draft.Quantity,
		BorrowDate:    draft.BorrowDate,
		ReturnDate:    draft.ReturnDate,
		Notes:         draft.Notes,
	})
	if err != nil {
		a.setRequestError(err)
		return models.BorrowRequest{}, a.failure(err, msgSubmitRequest)
	}
	a.log.Info("borrow request submitted",
		zap.String("request", created.ID),
		zap.String("user", u.ID),
		zap.String("equipment", eq.ID),
		zap.Int("quantity", draft.Quantity),
	)
	a.notify(models.SeveritySuccess, "Borrow request sent")
	a.mutated(ctx, resRequests)
	return created, nil
}

var statusNotice = map[models.RequestStatus]struct {
	sev models.Severity
	msg string
}{
	models.RequestApproved: {models.SeveritySuccess, "Request approved"},
	models.RequestRejected: {models.SeverityInfo, "Request rejected"},
	models.RequestReturned: {models.SeveritySuccess, "Equipment marked as returned"},
	models.RequestCanceled: {models.SeverityInfo, "Request canceled"},
}

// UpdateRequestStatus moves a request along its state machine. The current
// status is read from the backend first so stale views cannot skip a state.
func (a *Actions) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, notes string) (models.BorrowRequest, error) {
	if !status.Stored() {
		return models.BorrowRequest{}, ErrInvalidTransition
	}
	cur, err := a.client().GetRequest(ctx, id)
	if err != nil {
		a.setRequestError(err)
		return models.BorrowRequest{}, a.failure(err, msgUpdateRequest)
	}
	return a.transition(ctx, cur, status, notes)
}

func (a *Actions) transition(ctx context.Context, cur models.BorrowRequest, status models.RequestStatus, notes string) (models.BorrowRequest, error) {
	if !models.CanTransition(cur.Status, status) {
		return models.BorrowRequest{}, ErrInvalidTransition
	}
	updated, err := a.client().UpdateRequestStatus(ctx, cur.ID, status, notes)
	if err != nil {
		a.setRequestError(err)
		return models.BorrowRequest{}, a.failure(err, msgUpdateRequest)
	}
	a.Store.update(func(st *State) {
		if st.Requests.Selected != nil && st.Requests.Selected.ID == updated.ID {
			st.Requests.Selected = &updated
		}
	})
	if n, ok := statusNotice[status]; ok {
		a.notify(n.sev, n.msg)
	}
	a.mutated(ctx, resRequests)
	return updated, nil
}

// CancelRequest lets a student withdraw one of their own pending requests.
func (a *Actions) CancelRequest(ctx context.Context, id string) (models.BorrowRequest, error) {
	u, err := a.user()
	if err != nil {
		return models.BorrowRequest{}, err
	}
	cur, err := a.client().GetRequest(ctx, id)
	if err != nil {
		a.setRequestError(err)
		return models.BorrowRequest{}, a.failure(err, msgUpdateRequest)
	}
	if cur.UserID != u.ID {
		return models.BorrowRequest{}, ErrForbidden
	}
	return a.transition(ctx, cur, models.RequestCanceled, "")
}

func (a *Actions) DeleteRequest(ctx context.Context, id string) error {
	if err := a.client().DeleteRequest(ctx, id); err != nil {
		a.setRequestError(err)
		return a.failure(err, msgDeleteRequest)
	}
	a.Store.update(func(st *State) {
		if st.Requests.Selected != nil && st.Requests.Selected.ID == id {
			st.Requests.Selected = nil
		}
	})
	a.notify(models.SeveritySuccess, "Request deleted")
	a.mutated(ctx, resRequests)
	return nil
}
