package contact

// Contact represents a directory contact belonging to an agency.
type Contact struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Title          string `json:"title,omitempty"`
	EmailType      string `json:"email_type,omitempty"`
	ContactFormURL string `json:"contact_form_url,omitempty"`
	Department     string `json:"department,omitempty"`
	AgencyName     string `json:"agency_name,omitempty"`
	AgencyID       string `json:"agency_id,omitempty"`
	FirmID         string `json:"firm_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}
