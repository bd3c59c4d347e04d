// Package entities contains main entities of the client.
package entities

import (
	"time"
)

// Category is a post's category label.
type Category string

// Known categories. The backend stores labels as-is, filters match them
// case-sensitively.
const (
	PoliticsCategory      Category = "Politics"
	BusinessCategory      Category = "Business"
	TechnologyCategory    Category = "Technology"
	SportsCategory        Category = "Sports"
	EntertainmentCategory Category = "Entertainment"
	HealthCategory        Category = "Health"
	ScienceCategory       Category = "Science"
	WorldCategory         Category = "World"
)

// Categories lists every category label the backend accepts.
func Categories() []Category {
	return []Category{
		PoliticsCategory,
		BusinessCategory,
		TechnologyCategory,
		SportsCategory,
		EntertainmentCategory,
		HealthCategory,
		ScienceCategory,
		WorldCategory,
	}
}

// Role ...
type Role string

const (
	// AdminRole ...
	AdminRole Role = "admin"
	// UserRole ...
	UserRole Role = "user"
)

// Post ...
type Post struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Category  Category  `json:"category,omitempty"`
	Country   string    `json:"country,omitempty"`
	Important bool      `json:"important"`
	LikeCount int       `json:"likeCount"`
	Liked     bool      `json:"isLikedByUser"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// User ...
type User struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Country   string `json:"country,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
}

// IsAdmin ...
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == AdminRole
}

// Notification ...
type Notification struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Image     string    `json:"image,omitempty"`
	URL       string    `json:"url,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
