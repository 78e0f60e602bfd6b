package provider

import "context"

// Provider is the base interface all providers must implement.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// RequestResponse is a provider with one input and one output per call
// (HTTP, gRPC, subprocess).
type RequestResponse[I, O any] interface {
	Provider
	Execute(ctx context.Context, input I) (O, error)
}

// Sink is a provider that accepts input without producing output
// (queue produce, webhook, push notification).
type Sink[I any] interface {
	Provider
	Send(ctx context.Context, input I) error
}

// Func adapts a plain function into a RequestResponse provider.
func Func[I, O any](name string, fn func(ctx context.Context, input I) (O, error)) RequestResponse[I, O] {
	return &funcProvider[I, O]{name: name, fn: fn}
}

type funcProvider[I, O any] struct {
	name string
	fn   func(ctx context.Context, input I) (O, error)
}

func (f *funcProvider[I, O]) Name() string                     { return f.name }
func (f *funcProvider[I, O]) IsAvailable(context.Context) bool { return true }
func (f *funcProvider[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return f.fn(ctx, input)
}
