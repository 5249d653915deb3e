package model

// Identity is the mail identity of the person using the assistant. For an incoming message
// it is the receiver.
type Identity struct {
	Name         string
	Email        string
	Organization string
}
