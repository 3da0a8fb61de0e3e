package score

import "context"

type mockBackend struct {
	setupFunc  func(ctx context.Context) error
	createFunc func(ctx context.Context, r Result) error
	readFunc   func(ctx context.Context, playerName string) (*Total, error)
}

func (m mockBackend) Setup(ctx context.Context) error {
	return m.setupFunc(ctx)
}

func (m mockBackend) Create(ctx context.Context, r Result) error {
	return m.createFunc(ctx, r)
}

func (m mockBackend) Read(ctx context.Context, playerName string) (*Total, error) {
	return m.readFunc(ctx, playerName)
}
