// Package watch converts markup files as they change on disk.
//
// A Watcher walks a directory tree for files with the configured extensions
// (".tex" by default), converts them once at startup and again after each
// write, debounced per file. For "eq.tex" the result goes to "eq.solver",
// or the user-facing error message to "eq.err" when conversion fails. Only
// one of the two exists after each run. Hidden files and directories are
// skipped.
package watch
