package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/config"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/controllers"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/models"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/routes"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the central polling dashboard",
	Long: `Polls every configured agent for its vitals, keeps a rolling
history window per agent and metric, evaluates alert rules with
hysteresis, and serves the aggregate as JSON plus a live websocket
stream of samples and alert events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard() error {
	cfg, err := loadConfig("[DASHBOARD]")
	if err != nil {
		return err
	}
	if err := config.ValidateDashboard(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := services.NewHub()
	aggregator := services.NewAggregator(cfg.Dashboard.WindowSpan)
	alerts := services.NewAlertEngine(cfg.Dashboard.Rules, cfg.Dashboard.EventLimit, hub.BroadcastEvent)

	poller := services.NewPoller(cfg.Dashboard.RequestTimeout, cfg.Dashboard.BackoffBase, cfg.Dashboard.BackoffMax,
		func(target models.AgentTarget, sample models.Sample) {
			aggregator.Record(target.Name, sample)
			alerts.Evaluate(target.Name, sample)
			hub.BroadcastAgentSample(target.Name, sample)
		})
	poller.Start(ctx, cfg.Dashboard.Targets)

	router := newRouter()
	routes.RegisterDashboardRoutes(router,
		controllers.NewDashboardController(poller, aggregator, alerts),
		controllers.NewWebSocketController(hub))

	srv := &http.Server{Addr: cfg.Dashboard.Listen, Handler: router}
	err = serve(ctx, srv, "[DASHBOARD]")

	hub.Stop()
	poller.Wait()
	return err
}
