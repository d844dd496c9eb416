package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	fileIDAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	FileIDMinLength   = 4
	FileIDMaxLength   = 20
	defaultShortTries = 64
)

// ExistsFunc reports whether an identifier is already taken.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// IDGenerator produces file identifiers of random length over [a-z0-9].
type IDGenerator struct {
	// next yields FileIDMaxLength uniform characters; shorter ids are prefixes.
	next func() string
	// maxShortTries bounds random-length attempts before Allocate
	// switches to maximum-length candidates.
	maxShortTries int
}

// NewIDGenerator builds the underlying nanoid generator.
func NewIDGenerator(maxShortTries int) (*IDGenerator, error) {
	if maxShortTries <= 0 {
		maxShortTries = defaultShortTries
	}
	gen, err := nanoid.CustomASCII(fileIDAlphabet, FileIDMaxLength)
	if err != nil {
		return nil, fmt.Errorf("build id generator: %w", err)
	}
	return &IDGenerator{next: gen, maxShortTries: maxShortTries}, nil
}

// Generate returns a candidate with a length drawn uniformly from [4,20].
func (g *IDGenerator) Generate() string {
	n := FileIDMinLength + rand.IntN(FileIDMaxLength-FileIDMinLength+1)
	return g.next()[:n]
}

// Allocate loops until it finds a candidate exists reports as free. It is not
// reserved: the caller still races other uploads until the record is created.
// There is no upper bound on attempts; after maxShortTries only maximum-length
// candidates are tried.
func (g *IDGenerator) Allocate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var candidate string
		if attempt < g.maxShortTries {
			candidate = g.Generate()
		} else {
			candidate = g.next()
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// IsValidFileID reports whether id has the shape of an issued identifier.
func IsValidFileID(id string) bool {
	if len(id) < FileIDMinLength || len(id) > FileIDMaxLength {
		return false
	}
	for _, c := range id {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
