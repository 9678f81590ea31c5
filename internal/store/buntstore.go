package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/tidwall/buntdb"

	"github.com/Alifast22/formbuilder/model"
)

// Key prefixes in the buntdb keyspace.
const (
	formKeyPrefix = "form:"
	subKeyPrefix  = "sub:"
)

// BuntStore is a Store backed by a single-file buntdb database. It
// gives the durability-across-restarts guarantee without an external
// database process.
type BuntStore struct {
	db *buntdb.DB
}

// FilenameFromDir returns the database filename within a data directory.
func FilenameFromDir(dir string) string {
	return filepath.Join(dir, "formbuilder.db")
}

// NewBuntStore opens (or creates) the database file under dir.
func NewBuntStore(dir string) (*BuntStore, error) {
	db, err := buntdb.Open(FilenameFromDir(dir))
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}

	var cfg buntdb.Config
	if err := db.ReadConfig(&cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: read db config: %w", err)
	}
	cfg.SyncPolicy = buntdb.EverySecond
	if err := db.SetConfig(cfg); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set db config: %w", err)
	}

	return &BuntStore{db: db}, nil
}

// Close compacts and closes the underlying database.
func (s *BuntStore) Close() error {
	s.db.Shrink()
	return s.db.Close()
}

// AddForm persists a new schema.
func (s *BuntStore) AddForm(_ context.Context, schema model.FormSchema) error {
	payload, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("store: encode form: %w", err)
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		key := formKeyPrefix + schema.ID
		if _, err := tx.Get(key); err == nil {
			return model.NewConflictError(
				fmt.Sprintf("form %q already exists", schema.ID),
			)
		}
		_, _, err := tx.Set(key, string(payload), nil)
		return err
	})
}

// UpdateForm replaces a schema by id.
func (s *BuntStore) UpdateForm(_ context.Context, schema model.FormSchema) error {
	payload, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("store: encode form: %w", err)
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		key := formKeyPrefix + schema.ID
		if _, err := tx.Get(key); err != nil {
			if err == buntdb.ErrNotFound {
				return model.NewNotFoundError(
					fmt.Sprintf("form %q not found", schema.ID),
				)
			}
			return err
		}
		_, _, err := tx.Set(key, string(payload), nil)
		return err
	})
}

// DeleteForm removes a schema and cascades to its submissions in a
// single transaction.
func (s *BuntStore) DeleteForm(_ context.Context, id string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Delete(formKeyPrefix + id); err != nil {
			if err == buntdb.ErrNotFound {
				return model.NewNotFoundError(fmt.Sprintf("form %q not found", id))
			}
			return err
		}

		// Collect before deleting: mutating inside the iterator is
		// not allowed.
		var cascade []string
		err := tx.AscendKeys(subKeyPrefix+"*", func(key, value string) bool {
			var sub model.Submission
			if json.Unmarshal([]byte(value), &sub) == nil && sub.FormID == id {
				cascade = append(cascade, key)
			}
			return true
		})
		if err != nil {
			return err
		}
		for _, key := range cascade {
			if _, err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetForm retrieves a schema by id.
func (s *BuntStore) GetForm(_ context.Context, id string) (model.FormSchema, error) {
	var schema model.FormSchema
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(formKeyPrefix + id)
		if err != nil {
			if err == buntdb.ErrNotFound {
				return model.NewNotFoundError(fmt.Sprintf("form %q not found", id))
			}
			return err
		}
		return json.Unmarshal([]byte(value), &schema)
	})
	if err != nil {
		return model.FormSchema{}, err
	}
	return schema, nil
}

// ListForms returns all schemas, newest first.
func (s *BuntStore) ListForms(_ context.Context) ([]model.FormSchema, error) {
	var result []model.FormSchema
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(formKeyPrefix+"*", func(key, value string) bool {
			var schema model.FormSchema
			if json.Unmarshal([]byte(value), &schema) == nil {
				result = append(result, schema)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	sortForms(result)
	return result, nil
}

// SubmitData upserts a submission by id.
func (s *BuntStore) SubmitData(_ context.Context, sub model.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("store: encode submission: %w", err)
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(subKeyPrefix+sub.ID, string(payload), nil)
		return err
	})
}

// DeleteSubmission removes a submission by id.
func (s *BuntStore) DeleteSubmission(_ context.Context, id string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Delete(subKeyPrefix + id); err != nil {
			if err == buntdb.ErrNotFound {
				return model.NewNotFoundError(
					fmt.Sprintf("submission %q not found", id),
				)
			}
			return err
		}
		return nil
	})
}

// GetSubmissionByID retrieves a submission by id.
func (s *BuntStore) GetSubmissionByID(_ context.Context, id string) (model.Submission, error) {
	var sub model.Submission
	err := s.db.View(func(tx *buntdb.Tx) error {
		value, err := tx.Get(subKeyPrefix + id)
		if err != nil {
			if err == buntdb.ErrNotFound {
				return model.NewNotFoundError(
					fmt.Sprintf("submission %q not found", id),
				)
			}
			return err
		}
		return json.Unmarshal([]byte(value), &sub)
	})
	if err != nil {
		return model.Submission{}, err
	}
	return sub, nil
}

// ListSubmissions returns all submissions, newest first.
func (s *BuntStore) ListSubmissions(_ context.Context) ([]model.Submission, error) {
	return s.listSubmissions(func(model.Submission) bool { return true })
}

// ListSubmissionsByForm returns one form's submissions, newest first.
func (s *BuntStore) ListSubmissionsByForm(_ context.Context, formID string) ([]model.Submission, error) {
	return s.listSubmissions(func(sub model.Submission) bool {
		return sub.FormID == formID
	})
}

// LatestDraft returns the most recent draft for a form.
func (s *BuntStore) LatestDraft(_ context.Context, formID string) (model.Submission, error) {
	drafts, err := s.listSubmissions(func(sub model.Submission) bool {
		return sub.FormID == formID && sub.IsDraft
	})
	if err != nil {
		return model.Submission{}, err
	}
	if len(drafts) == 0 {
		return model.Submission{}, model.NewNotFoundError(
			fmt.Sprintf("no draft for form %q", formID),
		)
	}
	return drafts[0], nil
}

// Ping verifies the database is readable.
func (s *BuntStore) Ping(_ context.Context) error {
	return s.db.View(func(*buntdb.Tx) error { return nil })
}

func (s *BuntStore) listSubmissions(keep func(model.Submission) bool) ([]model.Submission, error) {
	var result []model.Submission
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(subKeyPrefix+"*", func(key, value string) bool {
			var sub model.Submission
			if json.Unmarshal([]byte(value), &sub) == nil && keep(sub) {
				result = append(result, sub)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	sortSubmissions(result)
	return result, nil
}
