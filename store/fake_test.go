package store

import (
	"context"
	"fmt"
	"sync"

	"equipment_lending_client/apiclient"
	"equipment_lending_client/models"
)

// fakeAPI is an in-memory backend. Hooks let tests block or fail calls.
type fakeAPI struct {
	mu        sync.Mutex
	token     string
	equipment []models.Equipment
	requests  []models.BorrowRequest
	read      map[string][]string
	nextID    int
	created   int
	markCalls int

	listEquipment func(ctx context.Context) error
	failWith      error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{read: map[string][]string{}}
}

// binder returns a Binder that shares f's data but remembers the token.
func (f *fakeAPI) binder() Binder {
	return func(token string) API { return &boundAPI{fakeAPI: f, token: token} }
}

type boundAPI struct {
	*fakeAPI
	token string
}

func (b *boundAPI) check() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWith != nil {
		return b.failWith
	}
	if b.token == "" || b.token != b.fakeAPI.token {
		return unauthorized()
	}
	return nil
}

func unauthorized() error {
	return fmt.Errorf("wrapped: %w", apiclient.ErrUnauthorized)
}

func (b *boundAPI) Login(_ context.Context, cred models.Credentials) (models.LoginResult, error) {
	if cred.Password != "pw" {
		return models.LoginResult{}, apiclient.ErrInvalidCredentials
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fakeAPI.token = "tok-" + cred.Username
	return models.LoginResult{Token: b.fakeAPI.token, Username: cred.Username, Role: models.RoleStudent}, nil
}

func (b *boundAPI) AdminLogin(ctx context.Context, cred models.Credentials) (models.LoginResult, error) {
	if _, err := b.Login(ctx, cred); err != nil {
		return models.LoginResult{}, err
	}
	return models.LoginResult{}, apiclient.ErrNotAdmin
}

func (b *boundAPI) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if b.listEquipment != nil {
		if err := b.listEquipment(ctx); err != nil {
			return nil, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Equipment(nil), b.equipment...), nil
}

func (b *boundAPI) GetEquipment(_ context.Context, id string) (models.Equipment, error) {
	if err := b.check(); err != nil {
		return models.Equipment{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.equipment {
		if e.ID == id {
			return e, nil
		}
	}
	return models.Equipment{}, apiclient.ErrNotFound
}

func (b *boundAPI) CreateEquipment(_ context.Context, in models.EquipmentInput) (models.Equipment, error) {
	if err := b.check(); err != nil {
		return models.Equipment{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	e := models.Equipment{ID: fmt.Sprintf("e%d", b.nextID), Name: in.Name, Category: in.Category, TotalQuantity: in.TotalQuantity, AvailableQuantity: in.AvailableQuantity, Status: in.Status}
	b.equipment = append(b.equipment, e)
	return e, nil
}

func (b *boundAPI) UpdateEquipment(_ context.Context, id string, in models.EquipmentInput) (models.Equipment, error) {
	if err := b.check(); err != nil {
		return models.Equipment{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.equipment {
		if e.ID == id {
			b.equipment[i].Name = in.Name
			return b.equipment[i], nil
		}
	}
	return models.Equipment{}, apiclient.ErrNotFound
}

func (b *boundAPI) DeleteEquipment(_ context.Context, id string) error {
	if err := b.check(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.equipment {
		if e.ID == id {
			b.equipment = append(b.equipment[:i], b.equipment[i+1:]...)
			return nil
		}
	}
	return apiclient.ErrNotFound
}

func (b *boundAPI) ListRequests(context.Context) ([]models.BorrowRequest, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.BorrowRequest(nil), b.requests...), nil
}

func (b *boundAPI) GetRequest(_ context.Context, id string) (models.BorrowRequest, error) {
	if err := b.check(); err != nil {
		return models.BorrowRequest{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return models.BorrowRequest{}, apiclient.ErrNotFound
}

func (b *boundAPI) CreateRequest(_ context.Context, in models.NewBorrowRequest) (models.BorrowRequest, error) {
	if err := b.check(); err != nil {
		return models.BorrowRequest{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.created++
	r := models.BorrowRequest{
		ID:            fmt.Sprintf("r%d", b.nextID),
		UserID:        in.UserID,
		UserName:      in.UserName,
		EquipmentID:   in.EquipmentID,
		EquipmentName: in.EquipmentName,
		Quantity:      in.Quantity,
		BorrowDate:    in.BorrowDate,
		ReturnDate:    in.ReturnDate,
		Status:        models.RequestPending,
	}
	b.requests = append(b.requests, r)
	return r, nil
}

func (b *boundAPI) UpdateRequestStatus(_ context.Context, id string, status models.RequestStatus, _ string) (models.BorrowRequest, error) {
	if err := b.check(); err != nil {
		return models.BorrowRequest{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.requests {
		if r.ID == id {
			b.requests[i].Status = status
			return b.requests[i], nil
		}
	}
	return models.BorrowRequest{}, apiclient.ErrNotFound
}

func (b *boundAPI) DeleteRequest(_ context.Context, id string) error {
	if err := b.check(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.requests {
		if r.ID == id {
			b.requests = append(b.requests[:i], b.requests[i+1:]...)
			return nil
		}
	}
	return apiclient.ErrNotFound
}

func (b *boundAPI) GetReadNotifications(_ context.Context, userID string) ([]string, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.read[userID]...), nil
}

func (b *boundAPI) MarkNotificationsRead(_ context.Context, userID string, ids []string) error {
	if err := b.check(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.markCalls++
	b.read[userID] = append(b.read[userID], ids...)
	return nil
}

// fakeTimer lets alert tests fire expiry by hand.
type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}
