package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/zenova/wms-billing/docs"
	"github.com/zenova/wms-billing/internal/app/api/handlers"
	mw "github.com/zenova/wms-billing/internal/app/api/middleware"
	"github.com/zenova/wms-billing/internal/app/service/notification"
	"github.com/zenova/wms-billing/internal/app/service/reconciliation"
	"github.com/zenova/wms-billing/internal/app/service/statistics"
	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/internal/platform/paypal"
	"github.com/zenova/wms-billing/internal/platform/stripegw"
	cfgpkg "github.com/zenova/wms-billing/pkg/config"
	metrics "github.com/zenova/wms-billing/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Trace only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log      *zap.SugaredLogger
	Cfg      *cfgpkg.Config
	Engine   reconciliation.Engine
	Gateway  stripegw.Gateway
	PayPal   paypal.Client
	Verifier firebase.TokenVerifier
	Pusher   notification.Pusher
	Invoices store.Invoices
	Payments store.Payments
	Stats    *statistics.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics on a side listener
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// The whole surface lives at the root, mirroring the mobile client's
	// existing paths.
	root := r.Group("/")
	root.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())

	handlers.RegisterHealthRoutes(root, d.Cfg)
	handlers.RegisterStripeRoutes(root, d.Engine, d.Gateway, d.Verifier, d.Log)
	handlers.RegisterPayPalRoutes(root, d.PayPal, d.Engine, d.Verifier, d.Log)
	handlers.RegisterNotificationRoutes(root, d.Invoices, d.Pusher, d.Verifier, d.Log)
	handlers.RegisterAdminRoutes(root, d.Payments, d.Stats, d.Verifier, d.Log)

	docs.SwaggerInfo.BasePath = "/"
	root.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
