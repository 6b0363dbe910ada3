// Package logs tails Marquee's log file with bounded memory.
//
// It backs `marquee logs`: negative offsets read the last N lines, follow
// mode polls for new lines until a wait deadline, and an optional substring
// filter narrows output to one request's correlation id.
package logs
