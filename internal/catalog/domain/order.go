package domain

import "time"

// Order records a purchase-intent click on a product. The actual checkout
// happens on the external vendor page behind Product.Link.
type Order struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"productId" gorm:"not null;index"`
	Product   Product   `json:"product" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}
