// internal/store/store_test.go
//
// Unit-tests for the MySQL store using sqlmock.
//
// Run: go test ./internal/store -v

package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/trailhead/internal/content"
)

var columnNames = []string{
	"content_id", "kind", "title", "slug", "folder", "summary", "tags",
	"body_content", "body_content_format", "main_picture", "content_version",
	"created_on", "created_by", "last_updated_on", "last_updated_by", "is_draft",
	"show_in_main_site_feed", "feed_on", "payload",
}

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T, batch int) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := New(sqlx.NewDb(db, "mysql"), batch)
	s.now = func() time.Time { return t0.Add(time.Hour) }
	return s, mock
}

func lineRow(id uuid.UUID, title string) []driver.Value {
	return []driver.Value{
		id.String(), "line", title, "ridge-walk", "2024", "", "hiking",
		"{{photo " + uuid.Nil.String() + ";}}", "markdown", nil, t0,
		t0, "me", nil, "", false, true, t0,
		[]byte(`{"lineDistance":5.25,"climbElevation":312}`),
	}
}

func TestByIDDecodesPayload(t *testing.T) {
	s, mock := newMock(t, 10)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM content WHERE content_id = ?`)).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(columnNames).AddRow(lineRow(id, "Ridge Walk")...))

	c, err := s.ByID(context.Background(), id)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	l, ok := c.(*content.Line)
	if !ok {
		t.Fatalf("got %T, want *content.Line", c)
	}
	if l.Title != "Ridge Walk" || l.LineDistance != 5.25 || l.ClimbElevation != 312 {
		t.Fatalf("unexpected record: %+v", l)
	}
	if l.MainPicture != nil {
		t.Fatalf("MainPicture = %v, want nil", l.MainPicture)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByIDNotFound(t *testing.T) {
	s, mock := newMock(t, 10)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM content WHERE content_id = ?`)).
		WillReturnRows(sqlmock.NewRows(columnNames))

	_, err := s.ByID(context.Background(), uuid.New())
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupBatchesIDs(t *testing.T) {
	s, mock := newMock(t, 2)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM content WHERE content_id IN (?, ?)`)).
		WithArgs(a.String(), b.String()).
		WillReturnRows(sqlmock.NewRows(columnNames).AddRow(lineRow(a, "A")...))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM content WHERE content_id IN (?)`)).
		WithArgs(c.String()).
		WillReturnRows(sqlmock.NewRows(columnNames).AddRow(lineRow(c, "C")...))

	got, err := s.Lookup(context.Background(), []content.ID{a, b, c})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 2 || got[0].Base().ContentID != a || got[1].Base().ContentID != c {
		t.Fatalf("unexpected result: %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestUnknownKindIsIntegrityError(t *testing.T) {
	s, mock := newMock(t, 10)
	id := uuid.New()
	row := lineRow(id, "Odd")
	row[1] = "hologram"
	mock.ExpectQuery(regexp.QuoteMeta(`FROM content WHERE content_id = ?`)).
		WillReturnRows(sqlmock.NewRows(columnNames).AddRow(row...))

	_, err := s.ByID(context.Background(), id)
	var ie *content.IntegrityError
	if !errors.As(err, &ie) || ie.ContentID != id {
		t.Fatalf("err = %v, want IntegrityError for %s", err, id)
	}
}

func TestSaveSupersedesLiveRow(t *testing.T) {
	s, mock := newMock(t, 10)
	p := &content.Post{}
	p.ContentID = uuid.New()
	p.Title = "Trip report"
	p.ContentVersion = t0

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT content_version FROM content WHERE content_id = ? FOR UPDATE`)).
		WithArgs(p.ContentID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"content_version"}).AddRow(t0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO historic_content`)).
		WithArgs(t0.Add(time.Hour), p.ContentID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM content WHERE content_id = ?`)).
		WithArgs(p.ContentID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO content (`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.Save(context.Background(), p, "editor"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !p.ContentVersion.After(t0) {
		t.Fatalf("version not bumped: %v", p.ContentVersion)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSaveRollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMock(t, 10)
	n := &content.Note{}
	n.ContentID = uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"content_version"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO content (`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if err := s.Save(context.Background(), n, "me"); err == nil {
		t.Fatal("want error")
	}
	if n.CreatedBy != "me" {
		t.Fatalf("new record not initialised: %+v", n.Common)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestDeleteArchivesThenRemoves(t *testing.T) {
	s, mock := newMock(t, 10)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO historic_content`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM content WHERE content_id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO historic_point_detail`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM point_detail WHERE point_content_id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := s.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSavePointDetailsSupersedesPoint(t *testing.T) {
	s, mock := newMock(t, 10)
	id := uuid.New()
	now := t0.Add(time.Hour)
	row, err := content.EncodeDetail(id, content.Peak{Notes: "windy"})
	if err != nil {
		t.Fatalf("EncodeDetail: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT content_version FROM content WHERE content_id = ? AND kind = ? FOR UPDATE`)).
		WithArgs(id.String(), "point").
		WillReturnRows(sqlmock.NewRows([]string{"content_version"}).AddRow(t0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO historic_content`)).
		WithArgs(now, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE content SET content_version = ?, last_updated_on = ? WHERE content_id = ?`)).
		WithArgs(now, now, id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO historic_point_detail`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM point_detail WHERE point_content_id = ?`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO point_detail (`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.SavePointDetails(context.Background(), id, []content.PointDetail{row}); err != nil {
		t.Fatalf("SavePointDetails: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSavePointDetailsMissingPoint(t *testing.T) {
	s, mock := newMock(t, 10)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WillReturnRows(sqlmock.NewRows([]string{"content_version"}))
	mock.ExpectRollback()

	err := s.SavePointDetails(context.Background(), uuid.New(), nil)
	if !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestLastGenerationNone(t *testing.T) {
	s, mock := newMock(t, 10)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM generation_log ORDER BY generation_version DESC LIMIT 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"generation_version", "generation_settings", "created_on"}))

	l, err := s.LastGeneration(context.Background())
	if err != nil || l != nil {
		t.Fatalf("LastGeneration = %v, %v; want nil, nil", l, err)
	}
}

func TestWriteChangedIDsReplacesVersion(t *testing.T) {
	s, mock := newMock(t, 10)
	a, b := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM generation_changed_content_id WHERE generation_version = ?`)).
		WithArgs(t0).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO generation_changed_content_id (generation_version, content_id) VALUES (?, ?),(?, ?)`)).
		WithArgs(t0, a.String(), t0, b.String()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	if err := s.WriteChangedIDs(context.Background(), t0, []content.ID{a, b}); err != nil {
		t.Fatalf("WriteChangedIDs: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestPruneRemovesOlderVersions(t *testing.T) {
	s, mock := newMock(t, 10)
	cutoff := t0.Add(-24 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`LIMIT 1 OFFSET ?`)).
		WithArgs(29).
		WillReturnRows(sqlmock.NewRows([]string{"generation_version"}).AddRow(cutoff))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM generation_log WHERE generation_version < ?`)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))
	for _, table := range generationTables {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ` + table + ` WHERE generation_version NOT IN`)).
			WillReturnResult(sqlmock.NewResult(0, 10))
	}
	mock.ExpectCommit()

	if err := s.Prune(context.Background(), 30); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestMenuLinksChangedSince(t *testing.T) {
	s, mock := newMock(t, 10)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM menu_link WHERE content_version > ?`)).
		WithArgs(t0).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	changed, err := s.MenuLinksChangedSince(context.Background(), t0)
	if err != nil || !changed {
		t.Fatalf("MenuLinksChangedSince = %v, %v", changed, err)
	}
}

func TestMigrateRunsEverySchemaStatement(t *testing.T) {
	s, mock := newMock(t, 10)
	for range schema {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
