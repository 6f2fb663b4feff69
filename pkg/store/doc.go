// Package store provides the local store behind the booking repositories.
//
// A Collection is a local snapshot of one kind of remote data (offers,
// partners, the account, reservations). It is replaced wholesale when fresh
// remote data arrives and read back when the remote source fails.
//
// Two backends are provided:
//
//   - GormCollection: SQLite through GORM (pure Go driver), one table per
//     record type. Replace runs in a transaction.
//   - RedisCollection: a Redis hash of JSON values plus an order list.
//     Replace runs in a MULTI/EXEC block.
//
// # SQLite
//
//	db, err := store.OpenSQLite("/var/lib/flybook/cache.db")
//	if err != nil {
//		return err
//	}
//	if err := store.AutoMigrate(db); err != nil {
//		return err
//	}
//	offers := store.NewGormCollection[store.OfferRecord](db, "offers")
//
// # Redis
//
//	offers := store.NewRedisCollection[store.OfferRecord](redisClient,
//		store.CollectionKey{Collection: "offers"})
//
// # Metrics
//
//   - booking_store_operations_total{backend, collection, operation}
//   - booking_store_errors_total{backend, collection, operation}
//   - booking_store_entities{backend, collection}
package store
