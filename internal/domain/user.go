package domain

import "time"

type Role string

const (
	RolePassenger Role = "PASSENGER"
	RoleStaff     Role = "STAFF"
)

// Profile carries the passenger details an order binds to.
type Profile struct {
	RealName string `json:"real_name"`
	IDCardNo string `json:"id_card_no"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}
