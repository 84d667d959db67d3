package models

import "strings"

type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "AVAILABLE"
	EquipmentOutOfStock  EquipmentStatus = "OUT_OF_STOCK"
	EquipmentMaintenance EquipmentStatus = "MAINTENANCE"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentAvailable, EquipmentOutOfStock, EquipmentMaintenance:
		return true
	default:
		return false
	}
}

// Equipment mirrors the API representation. Status and AvailableQuantity are
// computed by the backend; the client only reflects them.
type Equipment struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	TotalQuantity     int             `json:"totalQuantity"`
	AvailableQuantity int             `json:"availableQuantity"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Status            EquipmentStatus `json:"status"`
	Condition         string          `json:"condition"`
	CreatedAt         Time            `json:"createdAt"`
}

// EquipmentInput is the admin form payload for create and update.
type EquipmentInput struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          string          `json:"category"`
	TotalQuantity     int             `json:"totalQuantity"`
	AvailableQuantity int             `json:"availableQuantity"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Status            EquipmentStatus `json:"status"`
	Condition         string          `json:"condition"`
	CreatedAt         *Time           `json:"createdAt,omitempty"`
}

func (in EquipmentInput) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		v.Add("category", "category is required")
	}
	if in.TotalQuantity < 0 {
		v.Add("totalQuantity", "total quantity cannot be negative")
	}
	if in.AvailableQuantity < 0 {
		v.Add("availableQuantity", "available quantity cannot be negative")
	} else if in.AvailableQuantity > in.TotalQuantity {
		v.Add("availableQuantity", "available quantity cannot exceed total quantity")
	}
	if !in.Status.Valid() {
		v.Add("status", "unknown equipment status")
	}
	return v.OrNil()
}
