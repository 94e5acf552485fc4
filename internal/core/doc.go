// Package core provides filtering, sorting, and lookup over snackbar history
// records.
package core
