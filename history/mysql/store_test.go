package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/lifeos/echo/core"
)

// Interface compliance (compile-time assertion)
var _ core.HistoryStore = (*Store)(nil)

func newMockStore(t *testing.T, opts ...sqlmock.SqlMockOption) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	store, err := New(Options{DB: gormDB, Timeout: time.Second})
	require.NoError(t, err)
	return store, mock
}

func mustJSON(t *testing.T, turns turnsJSON) []byte {
	t.Helper()
	raw, err := json.Marshal(turns)
	require.NoError(t, err)
	return raw
}

func TestNew_RequiresDB(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestRowApply_AppendsAndTrims(t *testing.T) {
	row := conversationRow{UserID: "u1", AgentName: "gmail"}
	base := time.Date(2025, 2, 3, 10, 30, 0, 0, time.UTC)

	for i, content := range []string{"a", "b", "c", "d"} {
		row.apply(turnRecord{
			ID:        content,
			Role:      "user",
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}, 3)
	}

	require.Len(t, row.Turns, 3)
	assert.Equal(t, "b", row.Turns[0].Content)
	assert.Equal(t, "c", row.Turns[1].Content)
	assert.Equal(t, "d", row.Turns[2].Content)
	assert.True(t, row.LastActivityAt.Equal(base.Add(3*time.Second)))
}

func TestRowApply_NoLimit(t *testing.T) {
	row := conversationRow{}
	for i := 0; i < 10; i++ {
		row.apply(turnRecord{Content: "m"}, 0)
	}
	assert.Len(t, row.Turns, 10)
}

func TestStore_AppendTurn(t *testing.T) {
	store, mock := newMockStore(t)
	key := core.NewKey("u1", "gmail")
	turn := core.NewUserTurn("hi")

	stored := mustJSON(t, turnsJSON{})
	rows := sqlmock.NewRows([]string{"user_id", "agent_name", "turns", "last_activity_at"}).
		AddRow("u1", "gmail", stored, time.Time{})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `conversations`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT \\* FROM `conversations` WHERE user_id = \\? AND agent_name = \\?(.*)FOR UPDATE").
		WithArgs("u1", "gmail", 1).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE `conversations` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.AppendTurn(context.Background(), key, turn, 20))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendTurn_WriteFailureWrapped(t *testing.T) {
	store, mock := newMockStore(t)
	key := core.NewKey("u1", "gmail")

	errInsert := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `conversations`").
		WillReturnError(errInsert)
	mock.ExpectRollback()

	err := store.AppendTurn(context.Background(), key, core.NewUserTurn("hi"), 20)
	require.Error(t, err)
	assert.True(t, core.IsStorageError(err))
	assert.ErrorIs(t, err, errInsert)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Load(t *testing.T) {
	store, mock := newMockStore(t)
	key := core.NewKey("u1", "gmail")

	at := time.Date(2025, 2, 3, 10, 30, 0, 0, time.UTC)
	stored := mustJSON(t, turnsJSON{
		{ID: "t1", Role: "user", Content: "hi", CreatedAt: at},
		{ID: "t2", Role: "assistant", Content: "hello", CreatedAt: at.Add(time.Second)},
	})
	rows := sqlmock.NewRows([]string{"user_id", "agent_name", "turns", "last_activity_at"}).
		AddRow("u1", "gmail", stored, at.Add(time.Second))

	mock.ExpectQuery("SELECT \\* FROM `conversations` WHERE user_id = \\? AND agent_name = \\?").
		WithArgs("u1", "gmail", 1).
		WillReturnRows(rows)

	conv, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	require.Len(t, conv.Turns, 2)
	assert.Equal(t, core.RoleUser, conv.Turns[0].Role)
	assert.Equal(t, "hi", conv.Turns[0].Content)
	assert.Equal(t, "hello", conv.Turns[1].Content)
	assert.True(t, conv.LastActivityAt.Equal(at.Add(time.Second)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LoadAbsent(t *testing.T) {
	store, mock := newMockStore(t)
	key := core.NewKey("u1", "gmail")

	mock.ExpectQuery("SELECT \\* FROM `conversations`").
		WithArgs("u1", "gmail", 1).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "agent_name", "turns", "last_activity_at"}))

	conv, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, key, conv.Key)
	assert.Empty(t, conv.Turns)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Clear(t *testing.T) {
	store, mock := newMockStore(t)
	key := core.NewKey("u1", "gmail")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `conversations`").
		WithArgs("u1", "gmail").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Clear(context.Background(), key))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ClearAbsentIsNoOp(t *testing.T) {
	store, mock := newMockStore(t)
	key := core.NewKey("u1", "gmail")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `conversations`").
		WithArgs("u1", "gmail").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, store.Clear(context.Background(), key))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Ping(t *testing.T) {
	store, mock := newMockStore(t, sqlmock.MonitorPingsOption(true))

	mock.ExpectPing()
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTurnsJSON_ScanVariants(t *testing.T) {
	var turns turnsJSON
	require.NoError(t, turns.Scan([]byte(`[{"id":"t1","role":"user","content":"hi","created_at":"2025-02-03T10:30:00Z"}]`)))
	require.Len(t, turns, 1)
	assert.Equal(t, "t1", turns[0].ID)

	require.NoError(t, turns.Scan(`[]`))
	assert.Empty(t, turns)

	require.NoError(t, turns.Scan(nil))
	assert.Nil(t, turns)

	require.Error(t, turns.Scan(42))
}
