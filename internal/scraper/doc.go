// Package scraper drives a headless Chrome session through the club scheduling site
// and collects meeting agendas.
//
// The site only shows agendas to a logged-in officer, and switching between meetings
// happens through a dropdown that reloads the page, so plain HTTP fetching is not
// enough. The scraper logs in with the club number and password, walks every agenda
// in the dropdown up to a target date, and hands each page to the parser.
package scraper
