package cameriere

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

// Login exchanges credentials for a token pair and stores it. Nothing is
// stored when the backend refuses the credentials.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	ctx, span := tracer.Start(ctx, "cameriere.Client.Login")
	defer span.End()

	req := LoginRequest{Username: username, Password: password}
	if err := c.check(req); err != nil {
		return TokenPair{}, err
	}

	var tokens TokenPair
	err := c.publicJSON(ctx, &Request{Method: http.MethodPost, Path: "/admin/auth/login/", Body: req}, &tokens)
	if err != nil {
		span.RecordError(err)
		return TokenPair{}, fmt.Errorf("login failed: %w", err)
	}
	if tokens.Access == "" {
		return TokenPair{}, errors.New("login failed: no access token in response")
	}

	if err := c.tokens.Save(ctx, tokens); err != nil {
		return TokenPair{}, fmt.Errorf("store tokens: %w", err)
	}
	slog.InfoContext(ctx, "admin logged in", slog.String("username", username))
	return tokens, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}

func (c *Client) FetchAdminOrders(ctx context.Context) ([]Order, error) {
	ctx, span := tracer.Start(ctx, "cameriere.Client.FetchAdminOrders")
	defer span.End()

	var orders []Order
	if err := c.authJSON(ctx, &Request{Method: http.MethodGet, Path: "/admin/orders/"}, &orders); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) error {
	req := statusUpdateRequest{Status: status}
	if err := c.check(req); err != nil {
		return err
	}

	err := c.authJSON(ctx, &Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/admin/orders/%d/", orderID),
		Body:   req,
	}, nil)
	if err != nil {
		return fmt.Errorf("update order %d: %w", orderID, err)
	}
	return nil
}

// ClearOrders drops completed and cancelled orders on the backend and returns
// its summary message.
func (c *Client) ClearOrders(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.authJSON(ctx, &Request{Method: http.MethodDelete, Path: "/admin/orders/"}, &resp); err != nil {
		return "", fmt.Errorf("clear orders: %w", err)
	}
	return resp.Message, nil
}

func (c *Client) UpdateSettings(ctx context.Context, update SettingsUpdate) (*Settings, error) {
	if err := c.check(update); err != nil {
		return nil, err
	}

	var settings Settings
	err := c.authJSON(ctx, &Request{Method: http.MethodPut, Path: "/admin/settings/", Body: update}, &settings)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return &settings, nil
}

func (c *Client) FetchTables(ctx context.Context) ([]Table, error) {
	var tables []Table
	if err := c.authJSON(ctx, &Request{Method: http.MethodGet, Path: "/admin/tables/"}, &tables); err != nil {
		return nil, fmt.Errorf("fetch tables: %w", err)
	}
	return tables, nil
}

func (c *Client) AddTable(ctx context.Context, number int) (*Table, error) {
	req := addTableRequest{Number: number}
	if err := c.check(req); err != nil {
		return nil, err
	}

	var table Table
	if err := c.authJSON(ctx, &Request{Method: http.MethodPost, Path: "/admin/tables/", Body: req}, &table); err != nil {
		return nil, fmt.Errorf("add table: %w", err)
	}
	return &table, nil
}

func (c *Client) DeleteTable(ctx context.Context, tableID int64) error {
	err := c.authJSON(ctx, &Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/admin/tables/%d/", tableID),
	}, nil)
	if err != nil {
		return fmt.Errorf("delete table %d: %w", tableID, err)
	}
	return nil
}

type NewMenuItem struct {
	Category           int64           `validate:"required,min=1"`
	Name               string          `validate:"required,max=200"`
	Description        string          `validate:"max=2000"`
	Price              decimal.Decimal `validate:"-"`
	IsVeg              bool
	IsNonVeg           bool
	IsJain             bool
	IsChefsSpecial     bool
	CookingTimeMinutes int `validate:"min=0"`
	Image              *FilePart
}

func (n NewMenuItem) fields() map[string]string {
	return map[string]string{
		"category":             strconv.FormatInt(n.Category, 10),
		"name":                 n.Name,
		"description":          n.Description,
		"price":                n.Price.StringFixed(2),
		"is_veg":               strconv.FormatBool(n.IsVeg),
		"is_non_veg":           strconv.FormatBool(n.IsNonVeg),
		"is_jain":              strconv.FormatBool(n.IsJain),
		"is_chefs_special":     strconv.FormatBool(n.IsChefsSpecial),
		"cooking_time_minutes": strconv.Itoa(n.CookingTimeMinutes),
	}
}

// AddMenuItem posts the item as a multipart form so an image can ride along.
func (c *Client) AddMenuItem(ctx context.Context, item NewMenuItem) (string, error) {
	if err := c.check(item); err != nil {
		return "", err
	}
	if !item.Price.IsPositive() {
		return "", fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	var files []FilePart
	if item.Image != nil {
		img := *item.Image
		img.Field = "image"
		files = append(files, img)
	}
	body, err := NewMultipartBody(item.fields(), files...)
	if err != nil {
		return "", err
	}

	var resp messageResponse
	if err := c.authJSON(ctx, &Request{Method: http.MethodPost, Path: "/admin/menu/", Body: body}, &resp); err != nil {
		return "", fmt.Errorf("add menu item: %w", err)
	}
	return resp.Message, nil
}

// UploadMenuCSV sends a bulk menu file; parsing happens on the backend.
func (c *Client) UploadMenuCSV(ctx context.Context, filename string, content io.Reader) (string, error) {
	body, err := NewMultipartBody(nil, FilePart{Field: "file", Filename: filename, Content: content})
	if err != nil {
		return "", err
	}

	var resp messageResponse
	err = c.authJSON(ctx, &Request{Method: http.MethodPost, Path: "/admin/menu/csv-upload/", Body: body}, &resp)
	if err != nil {
		return "", fmt.Errorf("upload csv: %w", err)
	}
	return resp.Message, nil
}

// MenuItemPatch is a partial menu item update. Nil fields are left alone.
type MenuItemPatch struct {
	Name               *string          `json:"name,omitempty"`
	Description        *string          `json:"description,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	IsVeg              *bool            `json:"is_veg,omitempty"`
	IsNonVeg           *bool            `json:"is_non_veg,omitempty"`
	IsJain             *bool            `json:"is_jain,omitempty"`
	IsChefsSpecial     *bool            `json:"is_chefs_special,omitempty"`
	CookingTimeMinutes *int             `json:"cooking_time_minutes,omitempty"`

	// Image replaces the picture; the patch is then sent as multipart.
	Image *FilePart `json:"-"`
	// RemoveImage clears the picture.
	RemoveImage bool `json:"-"`
}

func (p MenuItemPatch) fields() map[string]string {
	fields := map[string]string{}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Price != nil {
		fields["price"] = p.Price.StringFixed(2)
	}
	if p.IsVeg != nil {
		fields["is_veg"] = strconv.FormatBool(*p.IsVeg)
	}
	if p.IsNonVeg != nil {
		fields["is_non_veg"] = strconv.FormatBool(*p.IsNonVeg)
	}
	if p.IsJain != nil {
		fields["is_jain"] = strconv.FormatBool(*p.IsJain)
	}
	if p.IsChefsSpecial != nil {
		fields["is_chefs_special"] = strconv.FormatBool(*p.IsChefsSpecial)
	}
	if p.CookingTimeMinutes != nil {
		fields["cooking_time_minutes"] = strconv.Itoa(*p.CookingTimeMinutes)
	}
	return fields
}

func (p MenuItemPatch) body() (any, error) {
	if p.Image != nil {
		img := *p.Image
		img.Field = "image"
		return NewMultipartBody(p.fields(), img)
	}
	if !p.RemoveImage {
		return p, nil
	}

	// image has to go out as an explicit null
	type patch MenuItemPatch
	return struct {
		patch
		Image *string `json:"image"`
	}{patch: patch(p)}, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, itemID int64, patch MenuItemPatch) (*MenuItem, error) {
	if patch.Image != nil && patch.RemoveImage {
		return nil, fmt.Errorf("%w: cannot set and remove the image at once", ErrValidation)
	}
	if patch.Price != nil && !patch.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	body, err := patch.body()
	if err != nil {
		return nil, err
	}

	var item MenuItem
	err = c.authJSON(ctx, &Request{
		Method: http.MethodPatch,
		Path:   fmt.Sprintf("/admin/menu/%d/", itemID),
		Body:   body,
	}, &item)
	if err != nil {
		return nil, fmt.Errorf("update menu item %d: %w", itemID, err)
	}
	return &item, nil
}
