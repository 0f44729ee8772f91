// Package cli implements the tm-roles command-line interface.
//
// The Cobra commands sync agendas from the club site, print role suggestions for a
// meeting (optionally announcing them on Telegram), manage saved assignments and the
// member roster, and run the HTTP API. Every command shares the --config, --data-dir,
// --format and --verbose flags and goes through the service package.
package cli
