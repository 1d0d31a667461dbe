package collector

import (
	"fmt"
	"strings"
	"time"
)

// ProviderOptions selects and configures an upstream provider.
type ProviderOptions struct {
	Name    string // yahoo, finance-go, rest, mock
	BaseURL string
	APIKey  string
	Proxy   string
	Timeout time.Duration
}

// NewProvider builds the provider named in opts.
func NewProvider(opts ProviderOptions) (Provider, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	switch strings.ToLower(opts.Name) {
	case "", "yahoo":
		return NewYahooProvider(opts.BaseURL, opts.Proxy, timeout), nil
	case "finance-go", "financego":
		return NewFinanceGoProvider(), nil
	case "rest":
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("rest provider requires a base url")
		}
		return NewRESTProvider(opts.BaseURL, opts.APIKey, opts.Proxy, timeout), nil
	case "mock":
		return NewMockProvider(100), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Name)
	}
}
