package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"trivia-service/internal/domain"
)

// CodeAlphabet holds 32 characters without the look-alikes 0, 1, I and O.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxCodeAttempts = 10

// CodeGenerator produces join codes. Each character is drawn uniformly from
// CodeAlphabet; since 256 is a multiple of 32, masking a random byte is unbiased.
type CodeGenerator struct {
	random func([]byte) (int, error)
	now    func() time.Time
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{random: rand.Read, now: time.Now}
}

// Generate returns a fresh code of domain.CodeLength characters.
func (g *CodeGenerator) Generate() (string, error) {
	buf := make([]byte, domain.CodeLength)
	if _, err := g.random(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = CodeAlphabet[b&31]
	}
	return string(buf), nil
}

// GenerateUnique draws up to 10 codes and returns the first one exists rejects.
//
// If every attempt collides it returns a fresh code whose last two characters
// are the last two digits of the current unix millisecond clock. That code is
// not checked again and may clash; with about 1.07e9 codes the fallback is not
// expected to run, and stores still enforce uniqueness with domain.ErrCodeTaken.
// The digits come from outside CodeAlphabet and may include the look-alikes 0 and 1.
func (g *CodeGenerator) GenerateUnique(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := g.Generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	code, err := g.Generate()
	if err != nil {
		return "", err
	}
	suffix := fmt.Sprintf("%02d", g.now().UnixMilli()%100)
	return code[:domain.CodeLength-2] + suffix, nil
}
