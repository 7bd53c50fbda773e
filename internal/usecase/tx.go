package usecase

import "context"

// Transactor runs fn inside one storage transaction. Repository calls made
// with the ctx handed to fn join that transaction; fn's error rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
