package controllers

import (
	"time"

	"github.com/yeremiapane/coffee-order/models"
	"github.com/yeremiapane/coffee-order/utils"
)

type LineView struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
	LineTotal  string `json:"line_total"`
	PriceLabel string `json:"price_label"`
}

type OrderView struct {
	ID          uint       `json:"id,omitempty"`
	Empty       bool       `json:"empty"`
	Ordered     bool       `json:"ordered"`
	OrderedDate *time.Time `json:"ordered_date,omitempty"`
	Items       []LineView `json:"items"`
	Total       string     `json:"total"`
	TotalLabel  string     `json:"total_label"`
	Description string     `json:"description"`
}

type ProfileView struct {
	ID         uint   `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	RoomNumber string `json:"room_number"`
	Tel        string `json:"tel"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

func emptyOrderView() OrderView {
	return OrderView{Empty: true, Items: []LineView{}, Total: "0.00", TotalLabel: "$0.00"}
}

func newOrderView(order models.Order) OrderView {
	view := OrderView{
		ID:          order.ID,
		Empty:       len(order.Items) == 0,
		Ordered:     order.Ordered,
		Items:       make([]LineView, 0, len(order.Items)),
		Description: order.Description(),
	}
	if !order.OrderedDate.IsZero() {
		date := order.OrderedDate
		view.OrderedDate = &date
	}
	for _, line := range order.Items {
		view.Items = append(view.Items, LineView{
			Slug:       line.Item.Slug,
			Name:       line.Item.Name,
			Price:      line.Item.Price.StringFixed(2),
			PriceLabel: utils.FormatCurrency(line.Item.Price),
			Quantity:   line.Quantity,
			LineTotal:  line.LineTotal().StringFixed(2),
		})
	}
	total := order.Total()
	view.Total = total.StringFixed(2)
	view.TotalLabel = utils.FormatCurrency(total)
	return view
}

func newProfileView(user models.User) ProfileView {
	return ProfileView{
		ID:         user.ID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		RoomNumber: user.RoomNumber,
		Tel:        user.Tel,
		Email:      user.Email,
		Role:       user.Role,
	}
}
