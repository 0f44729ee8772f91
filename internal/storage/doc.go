// Package storage provides SQLite persistence for agendas, members and assignments.
//
// The database lives in a single file under the data directory (default
// ~/.local/share/tm-roles/tm-roles.db). Agendas are stored one row per meeting with
// the role list as JSON, so a re-sync replaces a meeting wholesale. Saving
// assignments for a meeting likewise replaces whatever was saved for that date.
package storage
