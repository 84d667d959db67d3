package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"equipment_lending_client/models"
)

// fakeBackend mimics the lending API closely enough for contract tests.
type fakeBackend struct {
	requests   []models.BorrowRequest
	read       map[string][]string
	lastStatus string
	lastNotes  string
}

func newFakeBackend(t *testing.T, fb *fakeBackend) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")

	login := func(role models.Role) gin.HandlerFunc {
		return func(c *gin.Context) {
			var cred models.Credentials
			if err := c.ShouldBindJSON(&cred); err != nil || cred.Password != "secret" {
				c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
				return
			}
			c.JSON(http.StatusOK, models.LoginResult{Token: "tok-" + cred.Username, Username: cred.Username, Role: role})
		}
	}
	api.POST("/auth/login", login(models.RoleStudent))
	api.POST("/auth/admin/login", login(models.RoleStudent))

	authed := api.Group("", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tok-alice" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Next()
	})
	authed.GET("/equipment/", func(c *gin.Context) {
		c.JSON(http.StatusOK, []models.Equipment{{ID: "cam", Name: "Camera", Status: models.EquipmentAvailable}})
	})
	authed.GET("/equipment/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Equipment not found"})
	})
	authed.GET("/request/", func(c *gin.Context) { c.JSON(http.StatusOK, fb.requests) })
	authed.POST("/request/", func(c *gin.Context) {
		var in models.NewBorrowRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		out := models.BorrowRequest{
			ID:          "r1",
			UserID:      in.UserID,
			EquipmentID: in.EquipmentID,
			Quantity:    in.Quantity,
			BorrowDate:  in.BorrowDate,
			ReturnDate:  in.ReturnDate,
			RequestDate: models.At(time.Now()),
			Status:      models.RequestPending,
		}
		fb.requests = append(fb.requests, out)
		c.JSON(http.StatusOK, out)
	})
	authed.PUT("/request/:id/status", func(c *gin.Context) {
		fb.lastStatus = c.Query("status")
		var body struct {
			Notes string `json:"notes"`
		}
		_ = c.ShouldBindJSON(&body)
		fb.lastNotes = body.Notes
		c.JSON(http.StatusOK, models.BorrowRequest{ID: c.Param("id"), Status: models.RequestStatus(fb.lastStatus)})
	})
	authed.GET("/notification-read/:user", func(c *gin.Context) { c.JSON(http.StatusOK, fb.read[c.Param("user")]) })
	authed.POST("/notification-read/", func(c *gin.Context) {
		var body struct {
			UserID          string   `json:"userId"`
			NotificationIDs []string `json:"notificationIds"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		fb.read[body.UserID] = append(fb.read[body.UserID], body.NotificationIDs...)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithTimeout(2*time.Second))
}

func TestLogin(t *testing.T) {
	c := newFakeBackend(t, &fakeBackend{})
	ctx := context.Background()

	res, err := c.Login(ctx, models.Credentials{Username: "alice", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token != "tok-alice" || res.User().IsAdmin {
		t.Fatalf("Login = %+v", res)
	}

	var hooked atomic.Bool
	c = c.OnUnauthorized(func() { hooked.Store(true) })
	_, err = c.Login(ctx, models.Credentials{Username: "alice", Password: "nope"})
	if !errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Incorrect username or password" {
		t.Fatalf("err = %#v", err)
	}
	if hooked.Load() {
		t.Fatal("login failure must not trigger logout hook")
	}
}

func TestAdminLoginRequiresAdminRole(t *testing.T) {
	c := newFakeBackend(t, &fakeBackend{})
	_, err := c.AdminLogin(context.Background(), models.Credentials{Username: "alice", Password: "secret"})
	if !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("AdminLogin err = %v, want ErrNotAdmin", err)
	}
}

func TestUnauthorizedHook(t *testing.T) {
	c := newFakeBackend(t, &fakeBackend{})
	var calls atomic.Int32
	c = c.WithToken("expired").OnUnauthorized(func() { calls.Add(1) })

	_, err := c.ListEquipment(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("ListEquipment err = %v, want ErrUnauthorized", err)
	}
	if err := c.MarkNotificationsRead(context.Background(), "alice", []string{"x"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("MarkNotificationsRead err = %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("hook calls = %d, want 2", calls.Load())
	}
}

func TestCreateThenFetchRoundTrip(t *testing.T) {
	fb := &fakeBackend{}
	c := newFakeBackend(t, fb).WithToken("tok-alice")
	ctx := context.Background()

	created, err := c.CreateRequest(ctx, models.NewBorrowRequest{
		UserID:      "alice",
		EquipmentID: "cam",
		Quantity:    2,
		BorrowDate:  models.Date(2026, time.May, 1),
		ReturnDate:  models.Date(2026, time.May, 3),
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	list, err := c.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("ListRequests = %+v", list)
	}
	got := list[0]
	if got.Quantity != 2 || got.Status != models.RequestPending {
		t.Fatalf("fetched quantity=%d status=%s, want 2 PENDING", got.Quantity, got.Status)
	}
	if !got.BorrowDate.DateOnly() || got.BorrowDate.Day() != 1 {
		t.Fatalf("BorrowDate = %v", got.BorrowDate)
	}
}

func TestUpdateRequestStatus(t *testing.T) {
	fb := &fakeBackend{}
	c := newFakeBackend(t, fb).WithToken("tok-alice")

	r, err := c.UpdateRequestStatus(context.Background(), "r9", models.RequestRejected, "broken lens")
	if err != nil {
		t.Fatalf("UpdateRequestStatus: %v", err)
	}
	if r.Status != models.RequestRejected || fb.lastStatus != "REJECTED" || fb.lastNotes != "broken lens" {
		t.Fatalf("status=%s sent=%q notes=%q", r.Status, fb.lastStatus, fb.lastNotes)
	}
	if _, err := c.UpdateRequestStatus(context.Background(), "r9", models.RequestOverdue, ""); err == nil {
		t.Fatal("OVERDUE must never be sent to the backend")
	}
}

func TestNotFoundAndReadIDs(t *testing.T) {
	fb := &fakeBackend{read: map[string][]string{"alice": {"r1:approval"}}}
	c := newFakeBackend(t, fb).WithToken("tok-alice")
	ctx := context.Background()

	if _, err := c.GetEquipment(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetEquipment err = %v, want ErrNotFound", err)
	}
	if err := c.MarkNotificationsRead(ctx, "alice", []string{"r2:return"}); err != nil {
		t.Fatalf("MarkNotificationsRead: %v", err)
	}
	ids, err := c.GetReadNotifications(ctx, "alice")
	if err != nil {
		t.Fatalf("GetReadNotifications: %v", err)
	}
	if len(ids) != 2 || ids[1] != "r2:return" {
		t.Fatalf("read ids = %v", ids)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw  string
		want string
	}{
		{raw: `{"detail":"nope"}`, want: "nope"},
		{raw: `{"message":"bad"}`, want: "bad"},
		{raw: `{"error":"worse"}`, want: "worse"},
		{raw: `{"detail":[{"loc":["body"]}]}`, want: `[{"loc":["body"]}]`},
		{raw: " plain text\n", want: "plain text"},
	}
	for _, tc := range testCases {
		if got := errorMessage([]byte(tc.raw)); got != tc.want {
			t.Fatalf("errorMessage(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
