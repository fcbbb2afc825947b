package store

import "go.uber.org/fx"

// Module exposes the aggregate store plus its narrow views so services can
// declare only the persistence concern they consume.
var Module = fx.Options(
	fx.Provide(
		New,
		func(s Store) Invoices { return s },
		func(s Store) Payments { return s },
		func(s Store) Subscriptions { return s },
		func(s Store) ReminderLogs { return s },
		func(s Store) NotificationRecords { return s },
		func(s Store) Users { return s },
	),
)
