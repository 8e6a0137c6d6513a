// Package api translates HTTP requests into review service calls and
// service results into JSON responses. Handlers never expose raw errors;
// errors.go maps them to a status and a client-safe message.
package api
