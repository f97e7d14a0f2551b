package domain

import "time"

type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusInProcess OrderStatus = "IN_PROCESS"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusError     OrderStatus = "ERROR"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusError
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Country      string `json:"country"`
}

// OrderItem carries enough product detail for the backend to price and
// verify the line without a second catalog lookup.
type OrderItem struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// OrderRequest is a snapshot built once per submission attempt. It does not
// change after creation.
type OrderRequest struct {
	Customer        Customer    `json:"customer"`
	DeliveryAddress Address     `json:"deliveryAddress"`
	Items           []OrderItem `json:"items"`
}

// NewOrderRequest copies the cart lines into an immutable snapshot.
func NewOrderRequest(cart *Cart, customer Customer, address Address) *OrderRequest {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, OrderItem{
			Code:        it.Code,
			Name:        it.Name,
			Description: it.Description,
			ImageURL:    it.ImageURL,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
	}
	return &OrderRequest{
		Customer:        customer,
		DeliveryAddress: address,
		Items:           items,
	}
}

type OrderConfirmation struct {
	OrderNumber string `json:"orderNumber"`
}

type OrderSummary struct {
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`
}

type OrderDetailItem struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

type OrderDetails struct {
	OrderNumber     string            `json:"orderNumber"`
	User            string            `json:"user"`
	Items           []OrderDetailItem `json:"items"`
	Customer        Customer          `json:"customer"`
	DeliveryAddress Address           `json:"deliveryAddress"`
	Status          OrderStatus       `json:"status,omitempty"`
	Comment         string            `json:"comment,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	TotalAmount     float64           `json:"totalAmount"`
}
