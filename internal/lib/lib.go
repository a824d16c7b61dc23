// Package lib holds helpers that do not fit strictly into other layers.
//
// utils carries the JSON helpers shared by the HTTP handlers and the CLI.
package lib
