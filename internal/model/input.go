package model

// Request bodies accepted by the HTTP API.

type RegisterInput struct {
	Username   string `json:"username" validate:"required,max=64"`
	Password   string `json:"password" validate:"required,max=72"`
	Email      string `json:"email" validate:"omitempty,email,max=254"`
	LicenseKey string `json:"license_key" validate:"required,max=64"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LicenseCheckInput struct {
	LicenseKey string `json:"license_key" validate:"required"`
}

// CreateLicenseInput leaves Days nil when the caller omitted it.
type CreateLicenseInput struct {
	Days *int `json:"days" validate:"omitempty,min=1,max=36500"`
}

type RemoveUserInput struct {
	Username string `json:"username" validate:"required"`
}

type UpdateExpiryInput struct {
	Username string `json:"username" validate:"required"`
	Days     *int   `json:"days" validate:"omitempty,min=1,max=36500"`
}

// DefaultDays is the validity applied when a request omits days.
const DefaultDays = 30

// DaysOrDefault dereferences days, falling back to DefaultDays.
func DaysOrDefault(days *int) int {
	if days == nil {
		return DefaultDays
	}
	return *days
}
