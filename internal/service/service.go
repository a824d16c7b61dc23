// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated
// requests from the handlers (or commands from the CLI), calls the
// repository and records what happened.
package service
