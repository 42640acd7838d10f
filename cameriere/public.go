package cameriere

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) FetchMenu(ctx context.Context, restaurantID int64) ([]Category, error) {
	ctx, span := tracer.Start(ctx, "cameriere.Client.FetchMenu")
	defer span.End()

	var menu []Category
	err := c.publicJSON(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/restaurants/%d/menu/", restaurantID),
	}, &menu)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	return menu, nil
}

// PlaceOrder validates the request locally before sending it.
func (c *Client) PlaceOrder(ctx context.Context, restaurantID int64, order PlaceOrderRequest) (*Order, error) {
	ctx, span := tracer.Start(ctx, "cameriere.Client.PlaceOrder")
	defer span.End()

	if err := c.check(order); err != nil {
		return nil, err
	}

	var placed Order
	err := c.publicJSON(ctx, &Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/api/restaurants/%d/orders/", restaurantID),
		Body:   order,
	}, &placed)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("place order: %w", err)
	}
	return &placed, nil
}

func (c *Client) FetchOrder(ctx context.Context, restaurantID, orderID int64) (*Order, error) {
	var order Order
	err := c.publicJSON(ctx, &Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/api/restaurants/%d/orders/%d/", restaurantID, orderID),
	}, &order)
	if err != nil {
		return nil, fmt.Errorf("fetch order status: %w", err)
	}
	return &order, nil
}

// FetchSettings reads the theme settings; the GET is public.
func (c *Client) FetchSettings(ctx context.Context) (*Settings, error) {
	var settings Settings
	err := c.publicJSON(ctx, &Request{Method: http.MethodGet, Path: "/admin/settings/"}, &settings)
	if err != nil {
		return nil, fmt.Errorf("fetch settings: %w", err)
	}
	return &settings, nil
}
