package models

import "time"

type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	FirstName    string    `gorm:"size:150" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsStaff      bool      `gorm:"default:false" json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Profile      *Profile  `json:"profile,omitempty"`
}

// Profile is created together with its Account and never outlives it.
type Profile struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	AccountID   uint     `gorm:"uniqueIndex;not null" json:"account_id"`
	Account     *Account `gorm:"constraint:OnDelete:CASCADE;" json:"account,omitempty"`
	PhoneNumber string   `gorm:"size:15" json:"phone_number"`
	Bio         string   `gorm:"type:text" json:"bio"`
	Status      string   `gorm:"size:60" json:"status"`
	Avatar      string   `gorm:"size:255" json:"avatar"` // path relative to the media root
	DreamTeam   bool     `gorm:"default:false;index" json:"dream_team"`
}

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:50;not null" json:"title"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Image       string    `gorm:"size:255" json:"image"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsPublished bool      `gorm:"default:false;index" json:"is_published"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Author      *Account  `gorm:"constraint:OnDelete:CASCADE;" json:"author,omitempty"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    *Account  `gorm:"constraint:OnDelete:CASCADE;" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Tagline is the site-wide motto. Only the first row is ever read.
type Tagline struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"size:255;not null;default:'Заголовок'" json:"title"`
	Text  string `gorm:"size:255;not null;default:'Текст'" json:"text"`
}
