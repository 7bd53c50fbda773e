package account

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

func TestStaticVerifier_VerifyAccessToken(t *testing.T) {
	t.Parallel()

	verifier := NewStaticVerifier(map[string]string{"tok-a": "alice", "tok-b": "bob"}, logging.NewNop())

	principal, err := verifier.VerifyAccessToken(context.Background(), " tok-b ")
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if principal.Identity != "bob" {
		t.Fatalf("unexpected identity: %q", principal.Identity)
	}

	for _, token := range []string{"", "tok-c", "tok-a-extra"} {
		_, err := verifier.VerifyAccessToken(context.Background(), token)
		if !errors.Is(err, usecase.ErrUnauthorized) {
			t.Fatalf("expected unauthorized for %q, got %v", token, err)
		}
	}
}
