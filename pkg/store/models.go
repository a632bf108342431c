package store

import "time"

type siteModel struct {
	SiteID   string `gorm:"column:site_id;primaryKey"`
	Name     string `gorm:"column:name"`
	Settings string `gorm:"column:settings;type:jsonb"`
}

func (siteModel) TableName() string { return "sites" }

type courseModel struct {
	CourseID  string  `gorm:"column:course_id;primaryKey"`
	DomainID  string  `gorm:"column:domain_id;index"`
	Title     string  `gorm:"column:title"`
	Published bool    `gorm:"column:published"`
	Cost      float64 `gorm:"column:cost"`
}

func (courseModel) TableName() string { return "courses" }

type lessonModel struct {
	LessonID string `gorm:"column:lesson_id;primaryKey"`
	CourseID string `gorm:"column:course_id;index"`
	DomainID string `gorm:"column:domain_id"`
	MediaID  string `gorm:"column:media_id"`
	Position int    `gorm:"column:position"`
}

func (lessonModel) TableName() string { return "lessons" }

type userModel struct {
	UserID      string `gorm:"column:user_id;primaryKey"`
	DomainID    string `gorm:"column:domain_id;index"`
	Email       string `gorm:"column:email"`
	Permissions string `gorm:"column:permissions;type:jsonb"`
}

func (userModel) TableName() string { return "users" }

type purchaseModel struct {
	UserID     string `gorm:"column:user_id;primaryKey"`
	CourseID   string `gorm:"column:course_id;primaryKey"`
	Downloaded bool   `gorm:"column:downloaded"`
}

func (purchaseModel) TableName() string { return "purchases" }

type linkModel struct {
	Token     string    `gorm:"column:token;primaryKey"`
	CourseID  string    `gorm:"column:course_id"`
	UserID    string    `gorm:"column:user_id"`
	DomainID  string    `gorm:"column:domain_id"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	Consumed  bool      `gorm:"column:consumed"`
}

func (linkModel) TableName() string { return "download_links" }

type orderModel struct {
	OrderID         string    `gorm:"column:order_id;primaryKey"`
	DomainID        string    `gorm:"column:domain_id;index"`
	CourseID        string    `gorm:"column:course_id"`
	PurchasedBy     string    `gorm:"column:purchased_by"`
	PaymentMethod   string    `gorm:"column:payment_method"`
	PaymentID       string    `gorm:"column:payment_id"`
	Amount          int64     `gorm:"column:amount"`
	CurrencyISOCode string    `gorm:"column:currency_iso_code"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (orderModel) TableName() string { return "orders" }
