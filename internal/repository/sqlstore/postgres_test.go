package sqlstore

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psiai/psiai-backend/internal/apperr"
	"github.com/psiai/psiai-backend/internal/models"
	"github.com/psiai/psiai-backend/internal/repository"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	db := sqlx.NewDb(mockDB, "postgres")
	return NewStore(db, func() time.Time { return fixedNow }), mock
}

func sessionRows(id, psyID, patID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "psychologist_id", "patient_id", "audio_url", "transcription", "full_summary",
		"anonymous_summary", "patient_demand", "context", "analise_da_ia", "questions", "answers",
		"conclusion", "created_at", "updated_at",
	}).AddRow(
		id.String(), psyID.String(), patID.String(), nil, "T", "resumo",
		nil, nil, nil, "análise", []byte(`["q1","q2"]`), nil,
		nil, fixedNow, fixedNow,
	)
}

func TestSessionRepository_Postgres_CreateForeignKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"lib/pq", &pq.Error{Code: "23503"}},
		{"pgx", &pgconn.PgError{Code: "23503"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).WillReturnError(tt.err)

			err := store.Sessions.Create(context.Background(), &models.Session{
				PsychologistID: uuid.New(),
				PatientID:      uuid.New(),
			})
			require.Error(t, err)
			assert.Equal(t, apperr.NotFound, apperr.CategoryOf(err))
		})
	}
}

func TestSessionRepository_Postgres_CreateOtherError(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).WillReturnError(&pq.Error{Code: "57014"})

	err := store.Sessions.Create(context.Background(), &models.Session{PsychologistID: uuid.New(), PatientID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, apperr.PersistenceFailure, apperr.CategoryOf(err))
}

func TestSessionRepository_Postgres_Update(t *testing.T) {
	store, mock := newMockStore(t)
	id, psyID, patID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE sessions SET answers = $1, full_summary = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(nil, "resumo", fixedNow, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sessionRows(id, psyID, patID))

	summary := "resumo"
	s, err := store.Sessions.Update(context.Background(), id, repository.SessionPatch{
		FullSummary: &summary,
		Answers:     repository.ClearAnswers(),
	})
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, psyID, s.PsychologistID)
	assert.Equal(t, models.StringList{"q1", "q2"}, s.Questions)
	assert.Nil(t, s.Answers)
	require.NotNil(t, s.ClinicalAnalysis)
	assert.Equal(t, "análise", *s.ClinicalAnalysis)
}

func TestSessionRepository_Postgres_UpdateNoRow(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Sessions.Update(context.Background(), id, repository.SessionPatch{})
	require.Error(t, err)
	assert.Equal(t, apperr.PersistenceFailure, apperr.CategoryOf(err))
}

func TestSessionRepository_Postgres_ListFilters(t *testing.T) {
	store, mock := newMockStore(t)
	id, psyID, patID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM sessions WHERE psychologist_id = $1 AND patient_id = $2 ORDER BY created_at DESC")).
		WithArgs(psyID.String(), patID.String()).
		WillReturnRows(sessionRows(id, psyID, patID))

	list, err := store.Sessions.List(context.Background(), repository.SessionFilter{
		PsychologistID: &psyID,
		PatientID:      &patID,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestPsychologistRepository_Postgres_GetMissing(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM psychologists WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnError(sql.ErrNoRows)

	p, err := store.Psychologists.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPatientRepository_Postgres_ListError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM patients ORDER BY created_at DESC")).
		WillReturnError(sql.ErrConnDone)

	_, err := store.Patients.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.PersistenceFailure, apperr.CategoryOf(err))
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
