package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/catswitch/internal/session"
	"github.com/jask/catswitch/internal/tui"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run the switcher in the terminal",
	Long: `Run the switcher against the apps manifest. tab and shift+tab cycle apps,
space jumps to the next category and enter switches to the selection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(ctx, appOptions{quietLog: true})
		if err != nil {
			return err
		}
		defer a.Close()

		activator, err := newActivator(a.cfg.Activation, a.log)
		if err != nil {
			return err
		}
		a.watchProvider(ctx)

		if addr := a.cfg.Metrics.Addr; addr != "" {
			srv := &http.Server{
				Addr:              addr,
				Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Warn("metrics server stopped", zap.Error(err))
				}
			}()
			defer func() {
				shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
				defer stop()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		model := tui.New(ctx, a.catalog, activator, a.cfg.UI.Width,
			tui.WithController(func(overlay session.Overlay, renderer session.Renderer) *session.Controller {
				return session.NewController(a.catalog, overlay, renderer, activator, a.log)
			}))
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		return err
	},
}
