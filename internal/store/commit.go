package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteSnapshot replaces the database contents with snap in a single
// transaction.
//
// Insert order respects FK dependencies:
//  1. Files
//  2. Declarations (depend on file_id)
//  3. Parameters (depend on declaration_id)
//  4. Imports (depend on file_id)
func (s *Store) WriteSnapshot(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{"DELETE FROM files", "DELETE FROM snapshot"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("write snapshot: clear: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshot (id, schema_version, base_api, created_at) VALUES (1, ?, ?, ?)",
		snap.Schema, snap.BaseAPI, snap.CreatedAt,
	); err != nil {
		return fmt.Errorf("write snapshot: header: %w", err)
	}

	for _, f := range snap.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		fileID, err := insertFileTx(ctx, tx, &f)
		if err != nil {
			return fmt.Errorf("write snapshot: file %s: %w", f.Path, err)
		}
		for _, d := range f.Declarations {
			declID, err := insertDeclarationTx(ctx, tx, fileID, &d)
			if err != nil {
				return fmt.Errorf("write snapshot: declaration %q in %s: %w", d.Key, f.Path, err)
			}
			for i, p := range d.Params {
				if err := insertParamTx(ctx, tx, declID, i, &p); err != nil {
					return fmt.Errorf("write snapshot: param %q of %q: %w", p.Label, d.Key, err)
				}
			}
		}
		for _, imp := range f.Imports {
			if err := insertImportTx(ctx, tx, fileID, &imp); err != nil {
				return fmt.Errorf("write snapshot: import %q in %s: %w", imp.Name, f.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write snapshot: commit: %w", err)
	}
	return nil
}

func insertFileTx(ctx context.Context, tx *sql.Tx, f *File) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO files (path, hash, is_base) VALUES (?, ?, ?)",
		f.Path, f.Hash, f.Base,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertDeclarationTx(ctx context.Context, tx *sql.Tx, fileID int64, d *Declaration) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO declarations (file_id, key, kind, name, owner, parent, type_expr,
			signature, description, returns, error_text, line, signature_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fileID, d.Key, d.Kind, d.Name, d.Owner, d.Parent, d.Type,
		d.Signature, d.Description, d.Returns, d.Error, d.Line, ComputeSignatureHash(*d),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func insertParamTx(ctx context.Context, tx *sql.Tx, declID int64, ordinal int, p *Param) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO parameters (declaration_id, ordinal, label, documentation) VALUES (?, ?, ?, ?)",
		declID, ordinal, p.Label, p.Documentation,
	)
	return err
}

func insertImportTx(ctx context.Context, tx *sql.Tx, fileID int64, imp *Import) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO imports (file_id, name, path, local, resolved_path) VALUES (?, ?, ?, ?, ?)",
		fileID, imp.Name, imp.Path, imp.Local, imp.Resolved,
	)
	return err
}
