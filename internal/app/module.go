package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/zenova/wms-billing/internal/app/api/server"
	"github.com/zenova/wms-billing/internal/app/service/mailer"
	"github.com/zenova/wms-billing/internal/app/service/notification"
	"github.com/zenova/wms-billing/internal/app/service/reconciliation"
	"github.com/zenova/wms-billing/internal/app/service/scheduler"
	"github.com/zenova/wms-billing/internal/app/service/statistics"
	"github.com/zenova/wms-billing/internal/app/store"
	"github.com/zenova/wms-billing/internal/platform/db"
	"github.com/zenova/wms-billing/internal/platform/firebase"
	"github.com/zenova/wms-billing/internal/platform/paypal"
	"github.com/zenova/wms-billing/internal/platform/stripegw"
	"github.com/zenova/wms-billing/pkg/config"
	"github.com/zenova/wms-billing/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	store.Module,
	firebase.Module,
	stripegw.Module,
	paypal.Module,
	mailer.Module,
	notification.Module,
	reconciliation.Module,
	statistics.Module,
	scheduler.Module,
	server.Module,
)
