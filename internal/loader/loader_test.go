package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/drawlens/internal/flatfile"
	"github.com/verte-zerg/drawlens/internal/game"
	"github.com/verte-zerg/drawlens/internal/model"
	"github.com/verte-zerg/drawlens/internal/store"
)

func playWhe(t *testing.T) game.Profile {
	t.Helper()
	p, err := game.Default().Lookup("pw")
	require.NoError(t, err)
	return p
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+Extension), []byte(body), 0o644))
	}
	return dir
}

func TestDirLoaderLoadsTable(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pwmaster": "DrawNo,DrawDates,Nums\r\n7467,Fri 16-May-2025,08\r\n"})
	tbl, err := DirLoader{Dir: dir}.Load(context.Background(), "pwmaster")
	require.NoError(t, err)
	assert.Equal(t, "pwmaster", tbl.Name)
	assert.Equal(t, 1, tbl.Len())

	_, err = DirLoader{Dir: dir}.Load(context.Background(), "pwholidays")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadGameCollectsOptionalFailures(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pwmaster":   "DrawNo,DrawDates,Nums,Line\n7467,Fri 16-May-2025,08,3\n",
		"pwholidays": "Holiday,Date\nChristmas,25-Dec-2024\n",
		"pwnctrdow":  "Day,No,Played\nFri,8,40\n",
	})
	b, err := LoadGame(context.Background(), DirLoader{Dir: dir}, playWhe(t))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Master.Len())
	assert.Equal(t, 1, b.Holidays.Len())
	assert.Equal(t, 1, b.DOW.Len())
	assert.Equal(t, 0, b.DOM.Len())
	assert.Len(t, b.Missing, 4)
	assert.ErrorIs(t, b.Missing["pwnctrdom"], ErrNotFound)
}

func TestLoadGameMasterFailureIsLoadFailure(t *testing.T) {
	dir := writeFiles(t, map[string]string{"pwholidays": "Holiday,Date\n"})
	b, err := LoadGame(context.Background(), DirLoader{Dir: dir}, playWhe(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrLoadFailure)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, b.Master.Len())
	assert.Equal(t, 0, b.Holidays.Len())
}

type failingLoader struct{}

func (failingLoader) Load(context.Context, string) (flatfile.Table, error) {
	return flatfile.Table{}, errors.New("connection reset")
}

func TestLoadGameWrapsCollaboratorErrors(t *testing.T) {
	_, err := LoadGame(context.Background(), failingLoader{}, playWhe(t))
	assert.ErrorIs(t, err, model.ErrLoadFailure)
	assert.ErrorContains(t, err, "connection reset")
}

func TestImportAndLoadFromSQLite(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pwmaster":   "DrawNo,DrawDates,Nums,Line\n7467,Fri 16-May-2025,08,3\n7468,Sat 17-May-2025,12,\n",
		"pwholidays": "Holiday,Date\nChristmas,25-Dec-2024\n",
		"pwweek":     "",
	})
	st, err := store.Open(filepath.Join(t.TempDir(), "draws.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	imported, err := Import(ctx, DirLoader{Dir: dir}, st, playWhe(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"pwmaster", "pwholidays"}, imported)

	b, err := LoadGame(ctx, SQLiteLoader{Store: st}, playWhe(t))
	require.NoError(t, err)
	require.Equal(t, 2, b.Master.Len())
	assert.Equal(t, "08", b.Master.Rows[0]["Nums"].Text)
	_, ok := b.Master.Rows[1]["Line"]
	assert.True(t, ok, "empty text is stored as an empty value")
	assert.Equal(t, 1, b.Holidays.Len())
	assert.ErrorIs(t, b.Missing["pwweek"], ErrNotFound)
}
