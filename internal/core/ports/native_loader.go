package ports

import "context"

// NativeLoader is the host's own loader, asked before any filesystem search.
//
//go:generate mockgen -source=native_loader.go -destination=mocks/mock_native_loader.go -package=mocks
type NativeLoader interface {
	// TryLoad returns the path of a binary satisfying identity if the host can load it directly.
	TryLoad(ctx context.Context, identity string) (string, bool, error)
}
