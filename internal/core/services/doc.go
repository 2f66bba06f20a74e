// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on ports, the domain, and the logger and metrics
// packages. Concrete tokenizers, indexes and models are injected.
package services
