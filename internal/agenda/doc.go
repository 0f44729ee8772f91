// Package agenda provides the meeting agenda types shared by ingestion, storage and
// role assignment.
//
// An Agenda is one meeting's ordered list of role entries as scraped from the club's
// scheduling site. Stored agendas double as the role history: every named entry of a
// past meeting is one HistoryRecord. The package also parses the loose date labels used
// by the site and diffs two versions of the same meeting so sync runs can report what
// changed upstream.
package agenda
