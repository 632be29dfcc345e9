// Package output turns converted documents into files: it routes each source
// file to its destination name, serializes document bundles as multi-document
// YAML streams and writes them to disk or stdout.
package output
