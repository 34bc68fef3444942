// Package openapi describes a form's submission payload as an OpenAPI 3
// schema and checks payloads against it. Hosts publish the schema so clients
// know what a successful submit returns, and run the check as a last guard
// before a payload leaves the process.
package openapi
