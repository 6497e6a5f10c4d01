package booking

import (
	"fmt"

	"github.com/bissquit/hotel-booking/internal/domain"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CodeGenerator issues candidate confirmation codes. Uniqueness is checked
// by the service, not by the generator.
type CodeGenerator interface {
	Generate() (string, error)
}

// NanoidGenerator draws codes from crypto/rand through nanoid.
type NanoidGenerator struct{}

// Generate returns a random code in the BOOK-XXXXXXXX format.
func (NanoidGenerator) Generate() (string, error) {
	id, err := gonanoid.Generate(domain.ConfirmationCodeAlphabet, domain.ConfirmationCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return domain.ConfirmationCodePrefix + id, nil
}
