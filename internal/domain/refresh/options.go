package refresh

// ListOptions filters journal listings.
type ListOptions struct {
	Endpoint string
	Outcome  *Outcome
	Limit    int
	Offset   int
}
