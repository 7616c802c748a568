// Package storage owns the client's local sqlite database: opening it,
// applying embedded goose migrations, and the small key/value repository the
// credential store is built on.
package storage
