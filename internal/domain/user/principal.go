package user

// Principal is an authenticated operator. Identity is what lands in
// created_by and locked_by on the writes they make.
type Principal struct {
	Identity string
}
