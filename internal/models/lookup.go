// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

// Department is a lookup row referenced by users and postings.
type Department struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Classification is a lookup row referenced by user profiles.
type Classification struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
