package account

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/riskibarqy/camp-scoreboard/internal/domain/user"
	"github.com/riskibarqy/camp-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/camp-scoreboard/internal/usecase"
)

// StaticVerifier checks admin bearer tokens against a fixed list loaded
// from configuration. Only token hashes are kept in memory.
type StaticVerifier struct {
	entries []tokenEntry
	logger  *logging.Logger
}

type tokenEntry struct {
	hash     []byte
	identity string
}

func NewStaticVerifier(tokens map[string]string, logger *logging.Logger) *StaticVerifier {
	if logger == nil {
		logger = logging.Default()
	}

	entries := make([]tokenEntry, 0, len(tokens))
	for token, identity := range tokens {
		entries = append(entries, tokenEntry{hash: hashToken(token), identity: identity})
	}
	return &StaticVerifier{entries: entries, logger: logger}
}

func (v *StaticVerifier) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	sum := hashToken(token)
	identity := ""
	// Compare against every entry so timing does not reveal the match position.
	for _, entry := range v.entries {
		if subtle.ConstantTimeCompare(sum, entry.hash) == 1 {
			identity = entry.identity
		}
	}
	if identity == "" {
		v.logger.WarnContext(ctx, "admin token rejected", "token_hash", hex.EncodeToString(sum[:6]))
		return user.Principal{}, fmt.Errorf("%w: unknown admin token", usecase.ErrUnauthorized)
	}

	return user.Principal{Identity: identity}, nil
}

func hashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
