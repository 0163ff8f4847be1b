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

CREATE TABLE IF NOT EXISTS ticket_categories (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '#3b82f6',
	icon        TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS employees (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	position        TEXT NOT NULL DEFAULT '',
	department      TEXT NOT NULL DEFAULT '',
	is_active       INTEGER NOT NULL DEFAULT 1 CHECK(is_active IN (0, 1)),
	specializations TEXT NOT NULL DEFAULT '[]',
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tickets (
	id            TEXT PRIMARY KEY,
	ticket_number TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'open'
		CHECK(status IN ('open', 'in_progress', 'resolved', 'closed')),
	priority      TEXT NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
	category_id   TEXT REFERENCES ticket_categories(id) ON DELETE SET NULL,
	assigned_to   TEXT REFERENCES employees(id) ON DELETE SET NULL,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
CREATE INDEX IF NOT EXISTS idx_tickets_priority ON tickets(priority);
CREATE INDEX IF NOT EXISTS idx_tickets_assigned_to ON tickets(assigned_to);
CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS ticket_comments (
	id          TEXT PRIMARY KEY,
	ticket_id   TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
	author      TEXT NOT NULL DEFAULT '',
	content     TEXT NOT NULL,
	is_internal INTEGER NOT NULL DEFAULT 0 CHECK(is_internal IN (0, 1)),
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ticket_comments_ticket_id ON ticket_comments(ticket_id);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE VIEW IF NOT EXISTS ticket_summary AS
SELECT
	t.id,
	t.ticket_number,
	t.title,
	t.description,
	t.status,
	t.priority,
	t.category_id,
	COALESCE(c.name, '') AS category_name,
	t.assigned_to        AS employee_id,
	COALESCE(e.name, '') AS employee_name,
	t.created_at,
	t.updated_at
FROM tickets t
LEFT JOIN ticket_categories c ON c.id = t.category_id
LEFT JOIN employees e ON e.id = t.assigned_to;

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
