package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/camp-scoreboard/internal/domain/scoring"
)

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

func validateInput(input any) error {
	if err := inputValidator.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidInput, strings.ToLower(first.Field()), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// normalizeReason trims reason, substitutes fallback when empty and cuts it
// to maxRunes characters.
func normalizeReason(reason, fallback string, maxRunes int) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = fallback
	}
	return scoring.ClipReason(reason, maxRunes)
}
