package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReadSnapshot loads the snapshot held by the database. Files come back
// sorted by path, declarations by key, and parameters and imports in their
// recorded order.
func (s *Store) ReadSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := s.db.QueryRowContext(ctx,
		"SELECT schema_version, base_api, created_at FROM snapshot WHERE id = 1",
	).Scan(&snap.Schema, &snap.BaseAPI, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("read snapshot: database holds no snapshot")
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, path, hash, is_base FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("read snapshot: files: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		var f File
		if err := rows.Scan(&id, &f.Path, &f.Hash, &f.Base); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan file: %w", err)
		}
		ids = append(ids, id)
		snap.Files = append(snap.Files, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		decls, err := s.declarationsByFile(ctx, id)
		if err != nil {
			return nil, err
		}
		imports, err := s.importsByFile(ctx, id)
		if err != nil {
			return nil, err
		}
		snap.Files[i].Declarations = decls
		snap.Files[i].Imports = imports
	}
	return snap, nil
}

func (s *Store) declarationsByFile(ctx context.Context, fileID int64) ([]Declaration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, kind, name, owner, parent, type_expr, signature,
			description, returns, error_text, line
		 FROM declarations WHERE file_id = ? ORDER BY key`, fileID)
	if err != nil {
		return nil, fmt.Errorf("declarations by file: %w", err)
	}
	var ids []int64
	var out []Declaration
	for rows.Next() {
		var id int64
		var d Declaration
		if err := rows.Scan(&id, &d.Key, &d.Kind, &d.Name, &d.Owner, &d.Parent, &d.Type,
			&d.Signature, &d.Description, &d.Returns, &d.Error, &d.Line); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		ids = append(ids, id)
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		params, err := s.paramsByDeclaration(ctx, id)
		if err != nil {
			return nil, err
		}
		out[i].Params = params
	}
	return out, nil
}

func (s *Store) paramsByDeclaration(ctx context.Context, declID int64) ([]Param, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT label, documentation FROM parameters WHERE declaration_id = ? ORDER BY ordinal", declID)
	if err != nil {
		return nil, fmt.Errorf("params by declaration: %w", err)
	}
	defer rows.Close()
	var out []Param
	for rows.Next() {
		var p Param
		if err := rows.Scan(&p.Label, &p.Documentation); err != nil {
			return nil, fmt.Errorf("scan param: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) importsByFile(ctx context.Context, fileID int64) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, path, local, resolved_path FROM imports WHERE file_id = ? ORDER BY id", fileID)
	if err != nil {
		return nil, fmt.Errorf("imports by file: %w", err)
	}
	defer rows.Close()
	var out []Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.Name, &imp.Path, &imp.Local, &imp.Resolved); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

// DeclarationsByName returns every exported declaration called name along
// with the path of its file.
func (s *Store) DeclarationsByName(ctx context.Context, name string) (map[string][]Declaration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.path, d.key, d.kind, d.name, d.owner, d.parent, d.type_expr, d.signature,
			d.description, d.returns, d.error_text, d.line
		 FROM declarations d JOIN files f ON f.id = d.file_id
		 WHERE d.name = ? ORDER BY f.path, d.key`, name)
	if err != nil {
		return nil, fmt.Errorf("declarations by name: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]Declaration)
	for rows.Next() {
		var path string
		var d Declaration
		if err := rows.Scan(&path, &d.Key, &d.Kind, &d.Name, &d.Owner, &d.Parent, &d.Type,
			&d.Signature, &d.Description, &d.Returns, &d.Error, &d.Line); err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		out[path] = append(out[path], d)
	}
	return out, rows.Err()
}
