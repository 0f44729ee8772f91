// Package service ties agenda ingestion, storage and the assignment engine together.
//
// It is the single entry point used by both the HTTP server and the CLI:
//
//	svc := service.New(store, fetcher, engine, collector)
//	res, err := svc.SyncAgendas(ctx, target)
//	suggestions, err := svc.Suggest(ctx, meetingDate)
//
// Sync runs are serialised; a second sync while one is in flight fails with
// ErrSyncInProgress. Assignment writes are serialised per meeting date.
package service
