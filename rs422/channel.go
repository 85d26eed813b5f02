package rs422

import "io"

// Channel is the duplex byte channel connecting the engine to the deck.
//
// It is supplied by a serial-port collaborator (see the rs422/serial
// package); the engine does not open or configure the port. The engine is
// the channel's only user and accesses it from a single goroutine, so
// implementations need not be goroutine-safe.
type Channel interface {
	// Available reports whether at least one byte can be read without
	// blocking.
	Available() (bool, error)

	// Read reads up to len(p) bytes into p, blocking until at least one
	// byte is available or an error occurs. Standard io.Reader semantics.
	Read(p []byte) (int, error)

	// Write writes p to the deck.
	Write(p []byte) (int, error)
}

// readFull reads exactly len(p) bytes from ch.
func readFull(ch Channel, p []byte) error {
	_, err := io.ReadFull(ch, p)

	return err
}

// writeAll writes all of p to ch.
func writeAll(ch Channel, p []byte) error {
	for written := 0; written < len(p); {
		n, err := ch.Write(p[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}
