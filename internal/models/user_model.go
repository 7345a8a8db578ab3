package models

import "time"

// Role values assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the system. PasswordHash never leaves the
// backend; handlers marshal the Public view instead.
type User struct {
	ID               string    `json:"id" firestore:"-"`
	Email            string    `json:"email" firestore:"email"`
	PasswordHash     string    `json:"-" firestore:"password"`
	FirstName        string    `json:"firstName" firestore:"firstName"`
	LastName         string    `json:"lastName" firestore:"lastName"`
	Role             string    `json:"role" firestore:"role"`
	StripeCustomerID string    `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId"`
	SubscriptionID   string    `json:"subscription,omitempty" firestore:"subscription"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// PublicUser is the API representation of a user, without credentials.
type PublicUser struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Role             string    `json:"role"`
	StripeCustomerID string    `json:"stripeCustomerId,omitempty"`
	SubscriptionID   string    `json:"subscription,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Public strips credential material for API responses.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Role:             u.Role,
		StripeCustomerID: u.StripeCustomerID,
		SubscriptionID:   u.SubscriptionID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
