package employee

import (
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
)

type Employee struct {
	ID            string
	UserID        *string
	CompanyID     string
	FirstName     string
	LastName      string
	Email         string
	Phone         *string
	Department    *string
	Position      *string
	Location      *string
	Gender        *string
	ManagerID     *string
	AvatarURL     *string
	AvatarKey     *string
	AboutJob      *string
	Interests     *string
	Hobbies       *string
	Address       *string
	DateOfJoining time.Time
	JoiningSerial int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Join
	LoginID *string
	Role    *user.Role
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// Private profile fields an employee may edit on their own record.
const (
	FieldAboutJob  = "about_job"
	FieldInterests = "interests"
	FieldHobbies   = "hobbies"
	FieldAddress   = "address"
)

// PrivateFields lists the self-editable columns in the order they are reported.
var PrivateFields = []string{FieldAboutJob, FieldInterests, FieldHobbies, FieldAddress}

// AvatarMaxBytes bounds an uploaded avatar.
const AvatarMaxBytes = 5 << 20

// AvatarTypes maps accepted avatar extensions to their content type.
var AvatarTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}
