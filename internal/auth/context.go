package auth

import "context"

type vendorKey struct{}

func WithVendorID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, vendorKey{}, id)
}

func VendorIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(vendorKey{}).(int64)
	return id, ok
}
