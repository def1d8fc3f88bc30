package ports

import "go.trai.ch/asmres/internal/core/domain"

// IdentityReader reads the assembly identity embedded in a binary.
//
//go:generate mockgen -source=identity_reader.go -destination=mocks/mock_identity_reader.go -package=mocks
type IdentityReader interface {
	// ReadIdentity returns the identity of the binary at path.
	// It returns domain.ErrUnreadableBinary when the file carries no readable identity.
	ReadIdentity(path string) (domain.FoundIdentity, error)
}
