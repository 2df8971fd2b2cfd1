// Package model holds the catalog records: recipes, books, authors, stores and
// the book/author join rows.
//
// Every record carries a server-assigned integer ID and a creation date that is
// set once at insert time. Records expose their columns by name through
// FieldValue so that stores which do not speak SQL can filter and sort them with
// the same column names the SQL tables use.
package model
