package llm

import "fmt"

// ProviderFactory builds a configured Provider instance. Concrete
// providers register one from their package init, so a blank import of
// the provider package is all a binary needs to enable it.
type ProviderFactory func() (Provider, error)

var registry = make(map[string]ProviderFactory)

// RegisterProvider makes a provider selectable under the given name.
func RegisterProvider(name string, factory ProviderFactory) {
	registry[name] = factory
}

// NewProvider instantiates the provider registered under name.
func NewProvider(name string) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}
