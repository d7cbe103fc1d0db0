package auth

import "math/rand"

var adjectives = []string{
	"Swift", "Nimble", "Bold", "Deft", "Clever", "Eager", "Precise", "Mighty",
	"Sly", "Graceful", "Witty", "Fearless", "Masterful", "Brilliant", "Lucky",
}

var nouns = []string{
	"Panda", "Dragon", "Falcon", "Wolf", "Lion", "Tiger", "Eagle", "Fox",
	"Bear", "Cat", "Lynx", "Panther", "Cheetah", "Cobra", "Shark",
}

// GenerateGuestName returns an "Adjective Noun" name for anonymous players.
func GenerateGuestName() string {
	return adjectives[rand.Intn(len(adjectives))] + " " + nouns[rand.Intn(len(nouns))]
}
