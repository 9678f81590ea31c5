package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alifast22/formbuilder/model"
)

// storeFactories builds a fresh instance of every Store implementation
// that can run without external services.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"bunt": func(t *testing.T) Store {
			bs, err := NewBuntStore(t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { bs.Close() })
			return bs
		},
	}
}

func runForEachStore(t *testing.T, fn func(t *testing.T, st Store)) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func schemaFixture(id string, createdAt int64) model.FormSchema {
	return model.FormSchema{
		ID:      id,
		Title:   "Fixture " + id,
		Version: 1,
		Sections: []model.FormSection{
			{ID: id + "-s1", Title: "Main", Fields: []model.FormField{
				{ID: id + "-f1", Type: model.FieldTypeText, Label: "Name", Name: "name"},
			}},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func subFixture(id, formID string, at int64, draft bool) model.Submission {
	return model.Submission{
		ID:          id,
		FormID:      formID,
		FormVersion: 1,
		Data:        map[string]any{"name": "value-" + id},
		SubmittedAt: at,
		IsDraft:     draft,
	}
}

// --- forms ---

func TestStore_formCRUD(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		require.NoError(t, st.AddForm(ctx, schemaFixture("f1", 100)))

		got, err := st.GetForm(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "Fixture f1", got.Title)
		require.Len(t, got.Sections, 1)
		assert.Equal(t, "name", got.Sections[0].Fields[0].Name)

		updated := schemaFixture("f1", 100)
		updated.Title = "Renamed"
		updated.Version = 2
		require.NoError(t, st.UpdateForm(ctx, updated))

		got, err = st.GetForm(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, 2, got.Version)

		require.NoError(t, st.DeleteForm(ctx, "f1"))
		_, err = st.GetForm(ctx, "f1")
		assertCode(t, err, model.ErrNotFound)
	})
}

func TestStore_addFormConflict(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.AddForm(ctx, schemaFixture("f1", 100)))
		assertCode(t, st.AddForm(ctx, schemaFixture("f1", 200)), model.ErrConflict)
	})
}

func TestStore_updateMissingForm(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		assertCode(t, st.UpdateForm(context.Background(), schemaFixture("ghost", 1)), model.ErrNotFound)
	})
}

func TestStore_listFormsNewestFirst(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.AddForm(ctx, schemaFixture("old", 100)))
		require.NoError(t, st.AddForm(ctx, schemaFixture("new", 300)))
		require.NoError(t, st.AddForm(ctx, schemaFixture("mid", 200)))

		forms, err := st.ListForms(ctx)
		require.NoError(t, err)
		require.Len(t, forms, 3)
		assert.Equal(t, "new", forms[0].ID)
		assert.Equal(t, "mid", forms[1].ID)
		assert.Equal(t, "old", forms[2].ID)
	})
}

func TestStore_deleteFormCascades(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.AddForm(ctx, schemaFixture("f1", 100)))
		require.NoError(t, st.AddForm(ctx, schemaFixture("f2", 100)))
		require.NoError(t, st.SubmitData(ctx, subFixture("s1", "f1", 10, false)))
		require.NoError(t, st.SubmitData(ctx, subFixture("s2", "f1", 20, true)))
		require.NoError(t, st.SubmitData(ctx, subFixture("s3", "f2", 30, false)))

		require.NoError(t, st.DeleteForm(ctx, "f1"))

		_, err := st.GetSubmissionByID(ctx, "s1")
		assertCode(t, err, model.ErrNotFound)
		_, err = st.GetSubmissionByID(ctx, "s2")
		assertCode(t, err, model.ErrNotFound)

		// The other form's submissions survive.
		survivor, err := st.GetSubmissionByID(ctx, "s3")
		require.NoError(t, err)
		assert.Equal(t, "f2", survivor.FormID)
	})
}

// --- submissions ---

func TestStore_submitDataUpserts(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.SubmitData(ctx, subFixture("s1", "f1", 10, true)))

		again := subFixture("s1", "f1", 20, false)
		again.Data["name"] = "overwritten"
		require.NoError(t, st.SubmitData(ctx, again))

		subs, err := st.ListSubmissions(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "overwritten", subs[0].Data["name"])
		assert.False(t, subs[0].IsDraft)
	})
}

func TestStore_listSubmissionsByForm(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.SubmitData(ctx, subFixture("s1", "f1", 10, false)))
		require.NoError(t, st.SubmitData(ctx, subFixture("s2", "f2", 20, false)))
		require.NoError(t, st.SubmitData(ctx, subFixture("s3", "f1", 30, false)))

		subs, err := st.ListSubmissionsByForm(ctx, "f1")
		require.NoError(t, err)
		require.Len(t, subs, 2)
		assert.Equal(t, "s3", subs[0].ID, "newest first")
		assert.Equal(t, "s1", subs[1].ID)
	})
}

func TestStore_deleteSubmission(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()
		require.NoError(t, st.SubmitData(ctx, subFixture("s1", "f1", 10, false)))
		require.NoError(t, st.DeleteSubmission(ctx, "s1"))
		assertCode(t, st.DeleteSubmission(ctx, "s1"), model.ErrNotFound)
	})
}

func TestStore_latestDraft(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		ctx := context.Background()

		_, err := st.LatestDraft(ctx, "f1")
		assertCode(t, err, model.ErrNotFound)

		require.NoError(t, st.SubmitData(ctx, subFixture("s1", "f1", 10, true)))
		require.NoError(t, st.SubmitData(ctx, subFixture("s2", "f1", 30, true)))
		// Finalized submissions never count as drafts.
		require.NoError(t, st.SubmitData(ctx, subFixture("s3", "f1", 50, false)))

		draft, err := st.LatestDraft(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "s2", draft.ID)
	})
}

func TestStore_ping(t *testing.T) {
	runForEachStore(t, func(t *testing.T, st Store) {
		assert.NoError(t, st.Ping(context.Background()))
	})
}

// --- bunt durability ---

func TestBuntStore_survivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	bs, err := NewBuntStore(dir)
	require.NoError(t, err)
	require.NoError(t, bs.AddForm(ctx, schemaFixture("f1", 100)))
	require.NoError(t, bs.SubmitData(ctx, subFixture("s1", "f1", 10, true)))
	require.NoError(t, bs.Close())

	reopened, err := NewBuntStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	form, err := reopened.GetForm(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Fixture f1", form.Title)

	draft, err := reopened.LatestDraft(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "s1", draft.ID)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ee, ok := err.(*model.ErrorEnvelope)
	require.Truef(t, ok, "err = %T, want *model.ErrorEnvelope", err)
	assert.Equal(t, code, ee.Code)
}
