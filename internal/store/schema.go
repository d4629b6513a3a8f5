package store

const schema = `
CREATE TABLE IF NOT EXISTS apps (
    name TEXT PRIMARY KEY,
    install_date INTEGER,
    version TEXT
);

CREATE TABLE IF NOT EXISTS extensions (
    browser TEXT NOT NULL,
    extension_id TEXT NOT NULL,
    name TEXT,
    PRIMARY KEY (browser, extension_id)
);

CREATE TABLE IF NOT EXISTS search_configs (
    browser TEXT PRIMARY KEY,
    url TEXT,
    name TEXT
);

CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT
);
`
