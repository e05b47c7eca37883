package interfaces

// Peer is the outbound side of a client connection as the rest of the
// system sees it. Implementations must make WriteJSON safe for
// concurrent use.
//
// Delivery contract: at-most-once, no queue. WriteJSON hands the
// message to the connection's writer and returns; a closed peer or a
// full write buffer drops the message. Nothing is retried.
type Peer interface {
	// WriteJSON marshals v and sends it to the client.
	WriteJSON(v interface{}) error

	// Close tears down the connection. Safe to call more than once.
	Close() error

	// IsOpen reports whether the peer can still accept writes.
	IsOpen() bool
}
