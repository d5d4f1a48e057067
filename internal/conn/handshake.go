package conn

import (
	"net/http"
	"strconv"

	"github.com/monotanks/server/internal/protocol"
)

// Kind classifies a connection at handshake time.
type Kind int

const (
	KindPlayer Kind = iota
	KindSpectator
)

// HandshakeRequest is the parsed query string from the upgrade request
// (joinCode, nickname, type, enumSerializationFormat, quickJoin).
type HandshakeRequest struct {
	Kind        Kind
	JoinCode    string
	Nickname    string
	IsBot       bool
	EnumFormat  protocol.EnumFormat
	QuickJoin   bool
}

// ParseHandshake reads the handshake parameters for a request arriving at
// path (either "/" for players or "/spectator").
func ParseHandshake(r *http.Request, path string) HandshakeRequest {
	q := r.URL.Query()

	h := HandshakeRequest{
		JoinCode:   q.Get("joinCode"),
		Nickname:   q.Get("nickname"),
		IsBot:      q.Get("type") == "bot",
		EnumFormat: protocol.ParseEnumFormat(q.Get("enumSerializationFormat")),
	}
	if path == "/spectator" {
		h.Kind = KindSpectator
	} else {
		h.Kind = KindPlayer
	}
	if qj, err := strconv.ParseBool(q.Get("quickJoin")); err == nil {
		h.QuickJoin = qj
	}
	return h
}

// ValidateJoinCode reports whether the handshake's join code matches the
// server's configured code. An empty server join code accepts any value.
func ValidateJoinCode(serverCode, provided string) bool {
	if serverCode == "" {
		return true
	}
	return serverCode == provided
}
