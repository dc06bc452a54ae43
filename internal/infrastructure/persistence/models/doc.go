// Package models contains the GORM persistence models.
package models
