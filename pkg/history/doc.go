// Package history keeps a local, append-only log of generation runs. The log
// lives in a sqlite database under the XDG state directory and is only ever
// read back by the history command.
package history
