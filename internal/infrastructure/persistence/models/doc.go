// Package models contains GORM persistence models for the registry tables.
// Domain entities carry no ORM tags; repositories convert with ToDomain and
// FromDomain at the edge.
package models
