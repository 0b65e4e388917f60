package store

const Schema = `
CREATE TABLE IF NOT EXISTS songs (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	path TEXT NOT NULL,
	album_id INTEGER NOT NULL,
	track_no INTEGER DEFAULT 0,
	duration_ms INTEGER DEFAULT 0,
	mime_type TEXT,
	bitrate INTEGER,
	sample_rate INTEGER,
	art_ref TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_songs_album_id ON songs(album_id);
CREATE INDEX IF NOT EXISTS idx_songs_path ON songs(path);

CREATE TABLE IF NOT EXISTS albums (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	artist TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_albums_title_artist ON albums(title, artist);

CREATE TABLE IF NOT EXISTS artists (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL COLLATE NOCASE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_artists_name ON artists(name);

CREATE TABLE IF NOT EXISTS song_artists (
	song_id INTEGER NOT NULL,
	artist_id INTEGER NOT NULL,
	PRIMARY KEY (song_id, artist_id)
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sync_runs (
	id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	deep_scan BOOLEAN NOT NULL DEFAULT 0,
	files_seen INTEGER DEFAULT 0,
	filtered INTEGER DEFAULT 0,
	persisted INTEGER DEFAULT 0,
	error TEXT,
	started_at DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_sync_runs_started_at ON sync_runs(started_at);
`
