package conn

import (
	"net/http/httptest"
	"testing"
)

func TestParseHandshakePlayer(t *testing.T) {
	r := httptest.NewRequest("GET", "/?joinCode=abc&nickname=Alice&enumSerializationFormat=string", nil)

	hs := ParseHandshake(r, "/")
	if hs.Kind != KindPlayer {
		t.Errorf("expected KindPlayer for path /, got %v", hs.Kind)
	}
	if hs.JoinCode != "abc" || hs.Nickname != "Alice" {
		t.Errorf("expected joinCode=abc nickname=Alice, got joinCode=%s nickname=%s", hs.JoinCode, hs.Nickname)
	}
}

func TestParseHandshakeSpectator(t *testing.T) {
	r := httptest.NewRequest("GET", "/spectator", nil)
	hs := ParseHandshake(r, "/spectator")
	if hs.Kind != KindSpectator {
		t.Errorf("expected KindSpectator for /spectator, got %v", hs.Kind)
	}
}

func TestParseHandshakeBotFlag(t *testing.T) {
	r := httptest.NewRequest("GET", "/?type=bot", nil)
	hs := ParseHandshake(r, "/")
	if !hs.IsBot {
		t.Error("expected type=bot to set IsBot true")
	}
}

func TestValidateJoinCode(t *testing.T) {
	if !ValidateJoinCode("", "anything") {
		t.Error("expected an empty server join code to accept any provided code")
	}
	if !ValidateJoinCode("secret", "secret") {
		t.Error("expected a matching join code to validate")
	}
	if ValidateJoinCode("secret", "wrong") {
		t.Error("expected a mismatched join code to be rejected")
	}
}
