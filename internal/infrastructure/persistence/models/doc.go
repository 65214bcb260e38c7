// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain types so the domain stays free of ORM
// tags; each model carries ToDomain / FromDomain mappers used by the
// repositories in the parent package.
package models
