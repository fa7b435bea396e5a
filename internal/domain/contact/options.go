package contact

// ListOptions provides filtering options for listing contacts.
type ListOptions struct {
	AgencyName string
	Search     string
	SortBy     string
	Desc       bool
	Limit      int
	Offset     int
}
