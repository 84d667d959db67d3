package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"equipment_lending_client/apiclient"
	"equipment_lending_client/models"
	"equipment_lending_client/rules"
)

// API is the part of the lending REST API the actions use.
// *apiclient.Client satisfies it.
type API interface {
	Login(ctx context.Context, cred models.Credentials) (models.LoginResult, error)
	AdminLogin(ctx context.Context, cred models.Credentials) (models.LoginResult, error)

	ListEquipment(ctx context.Context) ([]models.Equipment, error)
	GetEquipment(ctx context.Context, id string) (models.Equipment, error)
	CreateEquipment(ctx context.Context, in models.EquipmentInput) (models.Equipment, error)
	UpdateEquipment(ctx context.Context, id string, in models.EquipmentInput) (models.Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error

	ListRequests(ctx context.Context) ([]models.BorrowRequest, error)
	GetRequest(ctx context.Context, id string) (models.BorrowRequest, error)
	CreateRequest(ctx context.Context, in models.NewBorrowRequest) (models.BorrowRequest, error)
	UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, notes string) (models.BorrowRequest, error)
	DeleteRequest(ctx context.Context, id string) error

	GetReadNotifications(ctx context.Context, userID string) ([]string, error)
	MarkNotificationsRead(ctx context.Context, userID string, ids []string) error
}

// Binder returns an API that authenticates with token. An empty token gives
// an anonymous API, enough for logging in.
type Binder func(token string) API

type Options struct {
	Identity       rules.IdentityMode
	AlertTimeout   time.Duration
	PersistTimeout time.Duration
	Logger         *zap.Logger
	Now            func() time.Time
}

// Actions are the operations a signed-in browser can run. Every action
// reports its outcome as an error; the store is updated before it returns.
type Actions struct {
	Store *Store

	mu   sync.Mutex
	api  API
	bind Binder

	identity       rules.IdentityMode
	persistTimeout time.Duration
	log            *zap.Logger
	now            func() time.Time
	bg             sync.WaitGroup
}

func NewActions(bind Binder, opts Options) *Actions {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = 10 * time.Second
	}
	return &Actions{
		Store:          New(NewAlertList(opts.AlertTimeout)),
		api:            bind(""),
		bind:           bind,
		identity:       opts.Identity,
		persistTimeout: opts.PersistTimeout,
		log:            opts.Logger,
		now:            opts.Now,
	}
}

func (a *Actions) client() API {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.api
}

func (a *Actions) user() (models.AuthUser, error) {
	a.Store.mu.Lock()
	defer a.Store.mu.Unlock()
	if !a.Store.state.Auth.Authenticated || a.Store.state.Auth.User == nil {
		return models.AuthUser{}, ErrNotSignedIn
	}
	return *a.Store.state.Auth.User, nil
}

// Wait blocks until background read-state persistence has finished.
func (a *Actions) Wait() { a.bg.Wait() }

// failure maps an API error onto the store: 401 ends the session without an
// alert, a caller that gave up gets no alert, and anything else raises msg.
func (a *Actions) failure(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSuperseded), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, apiclient.ErrUnauthorized):
		a.log.Info("backend rejected session token, signing out")
		a.Logout()
		return fmt.Errorf("%w: %w", ErrSessionExpired, err)
	default:
		a.log.Warn("lending api call failed", zap.Error(err))
		a.Store.Alerts.Push(models.SeverityError, msg)
		return err
	}
}

func (a *Actions) notify(sev models.Severity, msg string) {
	a.Store.Alerts.Push(sev, msg)
}

// Login signs in through the student or admin endpoint and binds the
// returned token to this session.
func (a *Actions) Login(ctx context.Context, cred models.Credentials, admin bool) (models.LoginResult, error) {
	anon := a.bind("")
	var (
		res models.LoginResult
		err error
	)
	if admin {
		res, err = anon.AdminLogin(ctx, cred)
	} else {
		res, err = anon.Login(ctx, cred)
	}
	switch {
	case errors.Is(err, apiclient.ErrNotAdmin):
		a.notify(models.SeverityError, msgNotAdmin)
		return models.LoginResult{}, err
	case err != nil:
		a.log.Info("login failed", zap.String("username", cred.Username), zap.Error(err))
		a.notify(models.SeverityError, msgLoginFailed)
		return models.LoginResult{}, err
	}
	a.Restore(res.User(), res.Token)
	return res, nil
}

// Restore marks the store signed in as user, e.g. for a session loaded from
// redis after a restart.
func (a *Actions) Restore(user models.AuthUser, token string) {
	a.mu.Lock()
	a.api = a.bind(token)
	a.mu.Unlock()
	a.Store.update(func(st *State) {
		st.Auth = AuthState{User: &user, Token: token, Authenticated: true}
	})
}

// Logout drops the token and every cached entity.
func (a *Actions) Logout() {
	a.mu.Lock()
	a.api = a.bind("")
	a.mu.Unlock()
	a.Store.Reset()
}

func (a *Actions) FetchEquipment(ctx context.Context) ([]models.Equipment, error) {
	items, err := fetch(ctx, a.Store, resEquipment,
		func(st *State) { st.Equipment.Loading = true },
		a.client().ListEquipment,
		func(st *State, items []models.Equipment) {
			if items == nil {
				items = []models.Equipment{}
			}
			st.Equipment = EquipmentState{Items: items, Selected: st.Equipment.Selected}
		},
		func(st *State, err error) {
			st.Equipment.Loading = false
			st.Equipment.Error = err.Error()
		},
	)
	return items, a.failure(err, msgLoadEquipment)
}

func (a *Actions) GetEquipment(ctx context.Context, id string) (models.Equipment, error) {
	api := a.client()
	eq, err := fetch(ctx, a.Store, resEquipmentItem,
		func(st *State) { st.Equipment.Loading = true },
		func(ctx context.Context) (models.Equipment, error) { return api.GetEquipment(ctx, id) },
		func(st *State, eq models.Equipment) {
			st.Equipment.Selected = &eq
			st.Equipment.Loading = false
			st.Equipment.Error = ""
		},
		func(st *State, err error) {
			st.Equipment.Loading = false
			st.Equipment.Error = err.Error()
		},
	)
	return eq, a.failure(err, msgLoadEquipment)
}

// mutated re-reads a list after a write so backend-computed fields such as
// availableQuantity and status are never guessed locally.
func (a *Actions) mutated(ctx context.Context, res resource) {
	var err error
	switch res {
	case resEquipment:
		_, err = a.FetchEquipment(ctx)
	case resRequests:
		_, err = a.FetchRequests(ctx)
	}
	if err != nil && !errors.Is(err, ErrSuperseded) {
		a.log.Debug("refresh after write failed", zap.Error(err))
	}
}

func (a *Actions) setEquipmentError(err error) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return
	}
	a.Store.update(func(st *State) {
		st.Equipment.Loading = false
		st.Equipment.Error = err.Error()
	})
}

func (a *Actions) setRequestError(err error) {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return
	}
	a.Store.update(func(st *State) {
		st.Requests.Loading = false
		st.Requests.Error = err.Error()
	})
}

func (a *Actions) CreateEquipment(ctx context.Context, in models.EquipmentInput) (models.Equipment, error) {
	if err := in.Validate(); err != nil {
		return models.Equipment{}, err
	}
	if in.CreatedAt == nil {
		now := models.At(a.now())
		in.CreatedAt = &now
	}
	eq, err := a.client().CreateEquipment(ctx, in)
	if err != nil {
		a.setEquipmentError(err)
		return models.Equipment{}, a.failure(err, msgSaveEquipment)
	}
	a.notify(models.SeveritySuccess, "Equipment added")
	a.mutated(ctx, resEquipment)
	return eq, nil
}

func (a *Actions) UpdateEquipment(ctx context.Context, id string, in models.EquipmentInput) (models.Equipment, error) {
	if err := in.Validate(); err != nil {
		return models.Equipment{}, err
	}
	eq, err := a.client().UpdateEquipment(ctx, id, in)
	if err != nil {
		a.setEquipmentError(err)
		return models.Equipment{}, a.failure(err, msgSaveEquipment)
	}
	a.Store.update(func(st *State) {
		if st.Equipment.Selected != nil && st.Equipment.Selected.ID == eq.ID {
			st.Equipment.Selected = &eq
		}
	})
	a.notify(models.SeveritySuccess, "Equipment updated")
	a.mutated(ctx, resEquipment)
	return eq, nil
}

func (a *Actions) DeleteEquipment(ctx context.Context, id string) error {
	if err := a.client().DeleteEquipment(ctx, id); err != nil {
		a.setEquipmentError(err)
		return a.failure(err, msgDeleteEquipment)
	}
	a.Store.update(func(st *State) {
		if st.Equipment.Selected != nil && st.Equipment.Selected.ID == id {
			st.Equipment.Selected = nil
		}
	})
	a.notify(models.SeveritySuccess, "Equipment deleted")
	a.mutated(ctx, resEquipment)
	return nil
}
