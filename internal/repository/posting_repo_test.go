package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"internship_portal/internal/model"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postingRowColumns = []string{"id", "title", "company", "area", "duration", "modality", "location", "description", "requirements", "status", "created_at"}

func newPostingRepoMock(t *testing.T) (PostingRepository, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostingRepository(mock, time.Second), mock
}

func TestPostingRepository_Create(t *testing.T) {
	repo, mock := newPostingRepoMock(t)
	now := time.Now()
	p := &model.Posting{
		Title: "Backend Intern", Company: "Acme", Area: "technology", Duration: "6 months",
		Modality: model.ModalityRemote, Location: "Lima", Status: model.PostingStatusActive,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO postings`)).
		WithArgs("Backend Intern", "Acme", "technology", "6 months", model.ModalityRemote, "Lima", "", "", model.PostingStatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int64(5), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingRepository_Find_Filtered(t *testing.T) {
	repo, mock := newPostingRepoMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM postings WHERE modality = $1 AND status = $2 ORDER BY created_at DESC`)).
		WithArgs(model.ModalityRemote, model.PostingStatusActive).
		WillReturnRows(pgxmock.NewRows(postingRowColumns).
			AddRow(int64(5), "Backend Intern", "Acme", "technology", "6 months", model.ModalityRemote, "Lima", "", "", model.PostingStatusActive, now))

	postings, err := repo.Find(context.Background(), Filter{"modality": model.ModalityRemote, "status": model.PostingStatusActive})
	require.NoError(t, err)
	require.Len(t, postings, 1)
	assert.Equal(t, "Backend Intern", postings[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingRepository_Find_All(t *testing.T) {
	repo, mock := newPostingRepoMock(t)

	mock.ExpectQuery(`FROM postings ORDER BY`).
		WillReturnRows(pgxmock.NewRows(postingRowColumns))

	postings, err := repo.Find(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, postings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingRepository_Find_Timeout(t *testing.T) {
	repo, mock := newPostingRepoMock(t)

	mock.ExpectQuery(`FROM postings`).WillReturnError(context.DeadlineExceeded)

	_, err := repo.Find(context.Background(), nil)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingRepository_Update(t *testing.T) {
	repo, mock := newPostingRepoMock(t)
	now := time.Now()
	status := model.PostingStatusClosed

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE postings SET status = $1 WHERE id = $2 RETURNING`)).
		WithArgs(status, int64(5)).
		WillReturnRows(pgxmock.NewRows(postingRowColumns).
			AddRow(int64(5), "Backend Intern", "Acme", "technology", "6 months", model.ModalityRemote, "Lima", "", "", status, now))

	p, err := repo.Update(context.Background(), 5, model.UpdatePostingRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, status, p.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingRepository_Update_EmptyPatchMissing(t *testing.T) {
	repo, mock := newPostingRepoMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM postings WHERE id = $1`)).
		WithArgs(int64(8)).
		WillReturnRows(pgxmock.NewRows(postingRowColumns))

	_, err := repo.Update(context.Background(), 8, model.UpdatePostingRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostingRepository_Delete_Missing(t *testing.T) {
	repo, mock := newPostingRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM postings WHERE id = $1`)).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 8), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
