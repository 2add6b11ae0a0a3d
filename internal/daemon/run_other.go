//go:build !linux

package daemon

import "context"

func Run(ctx context.Context, opts Options) error {
	return ErrUnsupported
}
