package heron

import "github.com/denismitr/heron/migration"

type ActionConfigurator func(a *action)

type action struct {
	target migration.Version
}

// WithTarget bounds a run at the given version, inclusive. Up defaults
// to MaxVersion (apply all), Down to MinVersion (revert all).
func WithTarget(v migration.Version) ActionConfigurator {
	return func(a *action) {
		a.target = v
	}
}
