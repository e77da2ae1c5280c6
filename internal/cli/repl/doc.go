// Package repl runs the interactive numbered menu.
//
//   - repl.go: menu loop and Item definitions
//   - session.go: line-oriented prompts used by menu items
//   - completer.go: resolves numbers and command words to items
//   - history.go: menu selections persisted between runs
//
// Only menu selections are written to history. Field values typed in
// answer to prompts may hold patient data and are never recorded.
package repl
