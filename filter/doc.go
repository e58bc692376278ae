// Package filter compiles the optional port guard, an expr-lang expression
// that decides whether an extracted port may be sent to the torrent client.
//
// The expression sees these variables:
//
//	port      the port found in the log
//	previous  the last port applied, 0 if none
//	file      base name of the log file
//	age       time since the log file was last modified
//
// and the helpers between(v, lo, hi), seconds(n) and minutes(n). Example:
//
//	port >= 1024 && age < minutes(10)
package filter
