package company

import "time"

// Company is the tenant that users, employees, payruns and access overrides belong to.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
