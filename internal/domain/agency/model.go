package agency

// Agency represents a government agency in the directory.
type Agency struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	State      string `json:"state,omitempty"`
	StateCode  string `json:"state_code,omitempty"`
	Type       string `json:"type,omitempty"`
	Population string `json:"population,omitempty"`
	Website    string `json:"website,omitempty"`
	County     string `json:"county,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}
