package game

// Game is a named activity that rounds are played under.
type Game struct {
	ID          string
	Slug        string
	Title       string
	Description string
}
