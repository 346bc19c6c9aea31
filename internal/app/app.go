package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/rafaelmp/pedidos/internal/domain/order"
	"github.com/rafaelmp/pedidos/internal/handler"
	"github.com/rafaelmp/pedidos/internal/money"
	"github.com/rafaelmp/pedidos/internal/storage/memory"
	"github.com/rafaelmp/pedidos/pkg/health"
	"github.com/rafaelmp/pedidos/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return errors.Wrap(err, "parse locale")
	}
	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		return errors.Wrap(err, "parse currency")
	}

	// Store + domain service. The store lives exactly as long as the
	// process: durability is out of scope.
	store := memory.NewOrderStore()
	orderService := order.NewService(store, money.NewFormatter(tag, unit))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLiveness("goroutines", health.GoroutineCountCheck(10000))
	healthSvc.AddReadiness("store", func(ctx context.Context) error {
		_, err := store.FindAll(ctx)
		return err
	})
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Order counters.
	meter := m.MeterProvider().Meter("pedidos")
	created, err := meter.Int64Counter("orders_created_total")
	if err != nil {
		return errors.Wrap(err, "create counter")
	}
	fulfilled, err := meter.Int64Counter("orders_fulfilled_total")
	if err != nil {
		return errors.Wrap(err, "create counter")
	}

	h := handler.NewHandler(orderService, handler.Metrics{
		OrdersCreated:   created,
		OrdersFulfilled: fulfilled,
	})

	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	router.Route("/api", h.Register)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(router, "pedidos-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
