// Package logger records every line the interpreter executes as newline
// delimited JSON and summarizes those logs.
package logger
