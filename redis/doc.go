// Package redis wraps go-redis with the project's logging and config
// conventions and a lifecycle Component.
//
// JSONStore keeps JSON-encoded values under a key prefix. The Eureka
// fallback provider keeps instance snapshots in one:
//
//	store := redis.NewJSONStore[[]eureka.Instance](client, "eureka:instances")
//	err := store.Put(ctx, "BILLING", instances, time.Hour)
package redis
