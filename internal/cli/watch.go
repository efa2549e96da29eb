package cli

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/internal/watch"
	"github.com/goliatone/go-formstate/pkg/form"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-validate changed fields whenever the model file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Model == "" {
				return errors.New("cli: watch needs a model file (--model)")
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			out := cmd.OutOrStdout()
			var (
				mu   sync.Mutex
				live atomic.Bool
			)
			// Events are reported only for changes after the initial run.
			hook := func(key string, valid bool, message string) {
				if !live.Load() {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if err := writeFieldEvent(out, a.cfg.Output, fieldEvent{Field: key, Valid: valid, Message: message}); err != nil {
					a.logger.Warn("write event", "error", err)
				}
			}

			sess, err := a.newSession(ctx, form.WithValidateHook(hook))
			if err != nil {
				return err
			}
			err = sess.form.Validate(ctx)
			verr, invalid := form.AsValidationError(err)
			if err != nil && !invalid {
				return err
			}
			mu.Lock()
			err = writeReport(out, a.cfg.Output, newReport(verr))
			mu.Unlock()
			if err != nil {
				return err
			}

			live.Store(true)

			w, err := watch.New(a.cfg.Model, watch.Options{Debounce: a.cfg.Watch.Debounce, Logger: a.logger})
			if err != nil {
				return err
			}
			watchErr, err := sess.form.StartWatch(ctx)
			if err != nil {
				return err
			}

			a.logger.Info("watching model", "file", w.Path())
			changes := w.Run(ctx)
			current := sess.store.Values()
			for {
				select {
				case <-ctx.Done():
					return nil
				case err := <-watchErr:
					return err
				case _, ok := <-changes:
					if !ok {
						return nil
					}
					next, err := formstate.LoadModel(a.cfg.Model)
					if err != nil {
						a.logger.Warn("reload model", "error", err)
						continue
					}
					applied := applyModel(sess, current, next)
					a.logger.Debug("model reloaded", "changed", applied)
					current = sess.store.Values()
				}
			}
		},
	}
}

// applyModel writes every top-level key whose value differs between prev and
// next into the store, publishing one change per key.
func applyModel(sess *session, prev, next map[string]any) int {
	changed := 0
	for key, value := range next {
		if old, ok := prev[key]; ok && reflect.DeepEqual(old, value) {
			continue
		}
		if err := sess.store.Set(key, value); err == nil {
			changed++
		}
	}
	for key := range prev {
		if _, ok := next[key]; ok {
			continue
		}
		if err := sess.store.Set(key, nil); err == nil {
			changed++
		}
	}
	return changed
}
