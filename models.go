package main

import "time"

// User is the persisted auth user record. Handlers convert it to userDTO
// before it ever reaches a client; the password hash stays server-side.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;size:320;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	Avatar    string    `json:"avatar,omitempty" gorm:"size:255"`
	Posts     int       `json:"posts" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Category    string    `json:"category" gorm:"size:64;index:idx_posts_category;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Creator     string    `json:"creator" gorm:"type:varchar(36);index:idx_posts_creator;not null"`
	Thumbnail   string    `json:"thumbnail" gorm:"size:255;not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Post) TableName() string { return "posts" }

// postCategories is the fixed set a post may belong to.
var postCategories = []string{
	"Fantasy",
	"Science-Fiction",
	"Romance",
	"Mystery-Thriller",
	"Historical-Fiction",
	"Non-Fiction",
	"Young-Adult",
	"Children's-Books",
	"Anime-Manga",
	"Novels-Comics",
}

func isValidCategory(c string) bool {
	for _, v := range postCategories {
		if v == c {
			return true
		}
	}
	return false
}

// --------- DTOs ---------

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Posts     int       `json:"posts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toDTO(u User) userDTO {
	return userDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Posts:     u.Posts,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
