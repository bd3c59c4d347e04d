// Package health contains code for health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// nolint:gochecknoglobals
var version = "dev"

// GetVersion returns the binary's version.
func GetVersion() string {
	return version
}

// Pinger pings a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
	Name() string
}

type pinger struct {
	f func(ctx context.Context) error
	n string
}

func (p pinger) Ping(ctx context.Context) error { return p.f(ctx) }
func (p pinger) Name() string                   { return p.n }

// SubjectPinger wraps a plain ping function, e.g. (storage.Storage).Ping.
func SubjectPinger(name string, f func(ctx context.Context) error) Pinger {
	return pinger{f: f, n: name}
}

// Handler reports the version and the state of every dependency.
func Handler(timeout time.Duration, p ...Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		gr, ctx := errgroup.WithContext(ctx)

		var mu sync.Mutex
		resp := struct {
			Version string            `json:"version"`
			Errors  map[string]string `json:"errors"`
		}{
			Version: version,
			Errors:  map[string]string{},
		}

		failed := false

		for i := range p {
			v := p[i]
			gr.Go(func() error {
				if err := v.Ping(ctx); err != nil {
					logrus.WithError(err).WithField("subject", v.Name()).Error("health check failed")

					mu.Lock()
					resp.Errors[v.Name()] = err.Error()
					failed = true
					mu.Unlock()
				}

				return nil
			})
		}

		_ = gr.Wait()

		if failed {
			w.WriteHeader(http.StatusInternalServerError)
		}

		data, _ := json.Marshal(resp)
		_, _ = w.Write(data)
	}
}
