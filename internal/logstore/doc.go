// Package logstore persists a ranked list of files to a plain-text log.
//
// Each line of the log holds one entry as
//
//	"<quoted absolute path>" - <size in bytes>
//
// in rank order. Save replaces the whole log; Load and Render read it back.
// Every operation opens the log on entry and closes it before returning.
package logstore
