package mcpquic

import (
	"fmt"
	"io"
)

// ReadMagic reads the 4-byte stream preamble and checks it.
func ReadMagic(r io.Reader) error {
	var magic [len(MagicBytesMCP)]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return fmt.Errorf("read magic bytes: %w", err)
	}
	if string(magic[:]) != MagicBytesMCP {
		return fmt.Errorf("%w: got %q", ErrInvalidMagicBytes, magic[:])
	}
	return nil
}

// WriteMagic writes the stream preamble. Clients send it right after
// opening the stream.
func WriteMagic(w io.Writer) error {
	if _, err := io.WriteString(w, MagicBytesMCP); err != nil {
		return fmt.Errorf("write magic bytes: %w", err)
	}
	return nil
}
