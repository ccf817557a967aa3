package store

// Member store schema. Dependent tables reference users(id) without ON
// DELETE CASCADE on purpose: removal order is owned by DeleteUserCascade so
// a partial cascade can never slip through outside a transaction.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	phone      TEXT UNIQUE,
	password   TEXT NOT NULL DEFAULT '',
	avatar     TEXT,
	bio        TEXT NOT NULL DEFAULT '',
	skills     TEXT NOT NULL DEFAULT '[]',
	location   TEXT NOT NULL DEFAULT '其他',
	company    TEXT NOT NULL DEFAULT '',
	position   TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT 'USER',
	points     INTEGER NOT NULL DEFAULT 100,
	level      INTEGER NOT NULL DEFAULT 1,
	is_active  INTEGER NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_users_name ON users(name);
CREATE INDEX IF NOT EXISTS idx_users_location ON users(location);

CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL REFERENCES users(id),
	post_id    TEXT NOT NULL REFERENCES posts(id),
	content    TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS likes (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	post_id TEXT NOT NULL REFERENCES posts(id)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	post_id TEXT NOT NULL REFERENCES posts(id)
);

CREATE TABLE IF NOT EXISTS event_participants (
	id       TEXT PRIMARY KEY,
	user_id  TEXT NOT NULL REFERENCES users(id),
	event_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS enrollments (
	id        TEXT PRIMARY KEY,
	user_id   TEXT NOT NULL REFERENCES users(id),
	course_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
	id        TEXT PRIMARY KEY,
	user_id   TEXT NOT NULL REFERENCES users(id),
	lesson_id TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	sender_id   TEXT NOT NULL REFERENCES users(id),
	receiver_id TEXT NOT NULL REFERENCES users(id),
	content     TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	content    TEXT NOT NULL DEFAULT '',
	read       INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS follows (
	id           TEXT PRIMARY KEY,
	follower_id  TEXT NOT NULL REFERENCES users(id),
	following_id TEXT NOT NULL REFERENCES users(id)
);
`
