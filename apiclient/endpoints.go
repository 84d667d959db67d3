package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"equipment_lending_client/models"
)

func (c *Client) Login(ctx context.Context, cred models.Credentials) (models.LoginResult, error) {
	var out models.LoginResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: cred, out: &out, login: true})
	return out, err
}

// AdminLogin logs in through the admin endpoint and refuses any account whose
// role is not admin.
func (c *Client) AdminLogin(ctx context.Context, cred models.Credentials) (models.LoginResult, error) {
	var out models.LoginResult
	if err := c.do(ctx, call{method: http.MethodPost, path: "/auth/admin/login", body: cred, out: &out, login: true}); err != nil {
		return models.LoginResult{}, err
	}
	if out.Role != models.RoleAdmin {
		return models.LoginResult{}, ErrNotAdmin
	}
	return out, nil
}

func (c *Client) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	var out []models.Equipment
	err := c.do(ctx, call{method: http.MethodGet, path: "/equipment/", out: &out})
	return out, err
}

func (c *Client) GetEquipment(ctx context.Context, id string) (models.Equipment, error) {
	var out models.Equipment
	err := c.do(ctx, call{method: http.MethodGet, path: "/equipment/" + url.PathEscape(id), out: &out})
	return out, err
}

func (c *Client) CreateEquipment(ctx context.Context, in models.EquipmentInput) (models.Equipment, error) {
	var out models.Equipment
	err := c.do(ctx, call{method: http.MethodPost, path: "/equipment/", body: in, out: &out})
	return out, err
}

func (c *Client) UpdateEquipment(ctx context.Context, id string, in models.EquipmentInput) (models.Equipment, error) {
	var out models.Equipment
	err := c.do(ctx, call{method: http.MethodPut, path: "/equipment/" + url.PathEscape(id), body: in, out: &out})
	return out, err
}

func (c *Client) DeleteEquipment(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/equipment/" + url.PathEscape(id)})
}

func (c *Client) ListRequests(ctx context.Context) ([]models.BorrowRequest, error) {
	var out []models.BorrowRequest
	err := c.do(ctx, call{method: http.MethodGet, path: "/request/", out: &out})
	return out, err
}

func (c *Client) GetRequest(ctx context.Context, id string) (models.BorrowRequest, error) {
	var out models.BorrowRequest
	err := c.do(ctx, call{method: http.MethodGet, path: "/request/" + url.PathEscape(id), out: &out})
	return out, err
}

func (c *Client) CreateRequest(ctx context.Context, in models.NewBorrowRequest) (models.BorrowRequest, error) {
	var out models.BorrowRequest
	err := c.do(ctx, call{method: http.MethodPost, path: "/request/", body: in, out: &out})
	return out, err
}

type statusNotes struct {
	Notes string `json:"notes"`
}

// UpdateRequestStatus moves a request to status. Only stored statuses can be
// sent; notes are optional.
func (c *Client) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, notes string) (models.BorrowRequest, error) {
	if !status.Stored() {
		return models.BorrowRequest{}, fmt.Errorf("apiclient: %s is not a stored status", status)
	}
	cl := call{
		method: http.MethodPut,
		path:   "/request/" + url.PathEscape(id) + "/status",
		query:  url.Values{"status": {string(status)}},
	}
	if notes != "" {
		cl.body = statusNotes{Notes: notes}
	}
	var out models.BorrowRequest
	cl.out = &out
	err := c.do(ctx, cl)
	return out, err
}

func (c *Client) DeleteRequest(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/request/" + url.PathEscape(id)})
}

func (c *Client) GetReadNotifications(ctx context.Context, userID string) ([]string, error) {
	var out []string
	err := c.do(ctx, call{method: http.MethodGet, path: "/notification-read/" + url.PathEscape(userID), out: &out})
	return out, err
}

type markRead struct {
	UserID          string   `json:"userId"`
	NotificationIDs []string `json:"notificationIds"`
}

func (c *Client) MarkNotificationsRead(ctx context.Context, userID string, ids []string) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/notification-read/",
		body:   markRead{UserID: userID, NotificationIDs: ids},
	})
}
