// Package logs reads cbae's daily log files for the logs command.
//
// Last returns the final lines of a file with bounded memory, Follow streams
// lines appended after an offset until its context ends, and Latest picks the
// newest daily file in the log directory.
package logs
