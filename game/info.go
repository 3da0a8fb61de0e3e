package game

// RoundStart is what the server sends when a round begins.
type RoundStart struct {
	// Image is the self-contained image players must identify the submitter of.
	Image string `json:"image"`
	// Options are the names to choose from, in the order the server sends them.
	Options []string `json:"options"`
}
