// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/waap/waap/internal/models"
)

// GetOrCreateDepartment returns the department with the given name,
// creating it if absent. Used by the lookup import command.
func (r *Repository) GetOrCreateDepartment(ctx context.Context, name string) (*models.Department, bool, error) {
	var dept models.Department
	err := r.db.GetContext(ctx, &dept, `SELECT * FROM departments WHERE name = ?`, name)
	if err == nil {
		return &dept, false, nil
	}
	if wrapErr(err) != ErrNotFound {
		return nil, false, err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO departments (name) VALUES (?)`, name)
	if err != nil {
		return nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	return &models.Department{ID: id, Name: name}, true, nil
}

// GetDepartment retrieves a department by ID.
func (r *Repository) GetDepartment(ctx context.Context, id int64) (*models.Department, error) {
	var dept models.Department
	if err := r.db.GetContext(ctx, &dept, `SELECT * FROM departments WHERE id = ?`, id); err != nil {
		return nil, wrapErr(err)
	}
	return &dept, nil
}

// ListDepartments returns all departments ordered by name.
func (r *Repository) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := r.db.SelectContext(ctx, &depts, `SELECT * FROM departments ORDER BY name`); err != nil {
		return nil, err
	}
	return depts, nil
}

// CountDepartments returns the number of departments.
func (r *Repository) CountDepartments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM departments`)
	return count, err
}

// GetOrCreateClassification returns the classification with the given
// name, creating it if absent.
func (r *Repository) GetOrCreateClassification(ctx context.Context, name string) (*models.Classification, bool, error) {
	var class models.Classification
	err := r.db.GetContext(ctx, &class, `SELECT * FROM classifications WHERE name = ?`, name)
	if err == nil {
		return &class, false, nil
	}
	if wrapErr(err) != ErrNotFound {
		return nil, false, err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO classifications (name) VALUES (?)`, name)
	if err != nil {
		return nil, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	return &models.Classification{ID: id, Name: name}, true, nil
}

// GetClassification retrieves a classification by ID.
func (r *Repository) GetClassification(ctx context.Context, id int64) (*models.Classification, error) {
	var class models.Classification
	if err := r.db.GetContext(ctx, &class, `SELECT * FROM classifications WHERE id = ?`, id); err != nil {
		return nil, wrapErr(err)
	}
	return &class, nil
}

// ListClassifications returns all classifications ordered by name.
func (r *Repository) ListClassifications(ctx context.Context) ([]models.Classification, error) {
	var classes []models.Classification
	if err := r.db.SelectContext(ctx, &classes, `SELECT * FROM classifications ORDER BY name`); err != nil {
		return nil, err
	}
	return classes, nil
}

// CountClassifications returns the number of classifications.
func (r *Repository) CountClassifications(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM classifications`)
	return count, err
}
