package agency

// ListOptions provides filtering options for listing agencies.
type ListOptions struct {
	State  string
	Type   string
	Search string
	SortBy string
	Desc   bool
	Limit  int
	Offset int
}
