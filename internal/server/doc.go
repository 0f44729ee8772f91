// Package server exposes the service over a JSON HTTP API.
//
// Routes:
//
//	GET|POST /sync_agendas?target_date=YYYY-MM-DD
//	POST     /assignments          one assignment, appended
//	POST     /assignments/bulk     replaces each covered meeting date
//	GET      /assignments?meeting_date=
//	GET      /assignments.ics?meeting_date=
//	GET      /suggestions?meeting_date=
//	GET      /agendas[?meeting_date=]
//	GET|POST /members
//	GET      /health
//	GET      /metrics
//
// Successful responses are {"success": true, "data": ...}; failures are
// {"detail": "..."} with a 4xx or 5xx status.
package server
