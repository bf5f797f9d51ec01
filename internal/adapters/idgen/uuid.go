package idgen

import "github.com/google/uuid"

type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator {
	return UUIDGenerator{}
}

// Generate returns a random (version 4) UUID string.
func (UUIDGenerator) Generate() string {
	return uuid.New().String()
}
