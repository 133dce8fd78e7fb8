package mcpquic

import (
	"errors"

	"github.com/quic-go/quic-go"
)

const (
	StreamErrorProtocolConfusion quic.StreamErrorCode = 0x02
	StreamErrorMessageTooLarge   quic.StreamErrorCode = 0x03
)

const (
	ConnErrorNoError           quic.ApplicationErrorCode = 0x00
	ConnErrorUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrorProtocolViolation quic.ApplicationErrorCode = 0x03
	ConnErrorMCPDisabled       quic.ApplicationErrorCode = 0x10
)

var (
	ErrInvalidMagicBytes = errors.New("invalid magic bytes")
	ErrUnsupportedALPN   = errors.New("ALPN " + ALPNProtocolMCP + " not negotiated")
	ErrNotConnected      = errors.New("mcpquic: client not connected")
)
