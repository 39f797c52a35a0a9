// Package output renders jobboard-cli results as a table, JSON or YAML.
//
// Server documents are schemaless, so list commands pass the columns they
// want shown in table mode; JSON and YAML always print the full documents.
package output
