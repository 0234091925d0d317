// Package models contains the GORM persistence models for price books,
// price entries and the read-only reference tables. Domain entities stay
// free of ORM tags; the ToDomain/FromDomain mappers convert between them.
package models
