package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id             TEXT PRIMARY KEY,
	task_id        TEXT NOT NULL,
	task_name      TEXT NOT NULL DEFAULT '',
	minutes_before INTEGER NOT NULL DEFAULT 0,
	message        TEXT NOT NULL,
	read           INTEGER NOT NULL DEFAULT 0 CHECK(read IN (0, 1)),
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS blobs (
	ref        TEXT PRIMARY KEY,
	media_type TEXT NOT NULL DEFAULT '',
	size       INTEGER NOT NULL,
	data       BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_task_id
	ON notifications(task_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
