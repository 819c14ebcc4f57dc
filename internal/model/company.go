package model

// Company is a tenant. It owns users and products.
type Company struct {
	BaseModel
	Name           string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	BusinessNumber string `gorm:"type:varchar(10);uniqueIndex;not null" json:"business_number"`
	Address        string `gorm:"type:varchar(200)" json:"address"`
	Phone          string `gorm:"type:varchar(20)" json:"phone"`

	Users    []User    `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
	Products []Product `gorm:"foreignKey:CompanyID" json:"products,omitempty"`
}
