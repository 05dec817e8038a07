package kv

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]Substrate {
	t.Helper()
	dir := t.TempDir()

	boltStore, err := OpenBolt(filepath.Join(dir, "test.bolt"))
	require.NoError(t, err)
	badgerStore, err := OpenBadger("", true, nil)
	require.NoError(t, err)
	fileStore, err := OpenFile(filepath.Join(dir, "records"))
	require.NoError(t, err)

	subs := map[string]Substrate{
		BackendBolt:   boltStore,
		BackendBadger: badgerStore,
		BackendFile:   fileStore,
	}
	t.Cleanup(func() {
		for _, s := range subs {
			s.Close()
		}
	})
	return subs
}

func TestSubstrate_RoundTrip(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set("k", []byte(`{"a":1}`)))
			got, err := s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, `{"a":1}`, string(got))

			require.NoError(t, s.Set("k", []byte(`[]`)))
			got, err = s.Get("k")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, s.Delete("k"))
			_, err = s.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)

			// deleting an absent key is not an error
			assert.NoError(t, s.Delete("k"))
		})
	}
}

func TestOpen_Dispatch(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(Options{Backend: BackendFile, Path: DefaultPath(BackendFile, dir)})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	s.Close()

	s, err = Open(Options{Backend: "", Path: DefaultPath(BackendBolt, dir)})
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)
	s.Close()

	_, err = Open(Options{Backend: "redis"})
	assert.Error(t, err)
}

func TestBolt_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.bolt")
	s, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestBadger_Logger(t *testing.T) {
	quiet, err := OpenBadger("", true, nil)
	require.NoError(t, err)
	defer quiet.Close()
	assert.Nil(t, quiet.db.Opts().Logger)

	log := logrus.New()
	s, err := Open(Options{Backend: BackendBadger, InMemory: true, Logger: log})
	require.NoError(t, err)
	defer s.Close()
	entry, ok := s.(*BadgerStore).db.Opts().Logger.(*logrus.Entry)
	require.True(t, ok)
	assert.Equal(t, "badger", entry.Data["component"])
	assert.Same(t, log, entry.Logger)
}
