package cli

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Huey-Lewy/Cloud-Vitals/internal/config"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/controllers"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/routes"
	"github.com/Huey-Lewy/Cloud-Vitals/internal/services"

	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the on-host vitals agent",
	Long: `Samples this host's CPU, memory, swap, disk, and network counters
once per interval and serves them over HTTP, together with stress job
control for failure drills and a live websocket feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAgent()
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
}

func runAgent() error {
	cfg, err := loadConfig("[AGENT]")
	if err != nil {
		return err
	}
	if err := config.ValidateAgent(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sampler := services.NewSampler(cfg.Agent.SampleInterval, cfg.Agent.ChannelSize, cfg.Agent.Volumes)
	store := services.NewSampleStore(cfg.Agent.HistorySize, sampler.Dropped)
	runner := services.NewStressRunner(cfg.Agent.StressBinary, cfg.Agent.GracePeriod)
	hub := services.NewHub()

	sampler.Start(ctx)
	store.Run(ctx, sampler.Samples(), hub.BroadcastSample)

	router := newRouter()
	routes.RegisterAgentRoutes(router,
		controllers.NewMetricsController(store),
		controllers.NewStressController(runner),
		controllers.NewWebSocketController(hub))

	srv := &http.Server{Addr: cfg.Agent.Listen, Handler: router}
	err = serve(ctx, srv, "[AGENT]")

	hub.Stop()
	runner.Shutdown()
	return err
}
