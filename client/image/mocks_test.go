package image

import "context"

type mockEncoder func(ctx context.Context, ref string) (string, error)

func (m mockEncoder) Encode(ctx context.Context, ref string) (string, error) {
	return m(ctx, ref)
}
