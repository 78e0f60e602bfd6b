// Package httpclient provides an HTTP client with built-in resilience.
//
// Every request runs through the chain
// RateLimiter → Fallback(CircuitBreaker(Retry(request))), with retry
// decisions driven by an HTTP-aware predicate: timeouts, connection
// failures, 429 and 5xx retry; other 4xx do not.
//
// # Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.payments.example",
//	    Retry:   httpclient.DefaultRetryConfig(),
//	    CircuitBreaker: &resilience.CircuitBreakerConfig{
//	        FailureThreshold: 5,
//	        BreakDuration:    30 * time.Second,
//	    },
//	})
//
//	resp, err := client.Get(ctx, "/v1/accounts/42")
package httpclient
