package db

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'employee' CHECK (role IN ('employee', 'manager', 'partner')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS user_stores (
    user_id  TEXT NOT NULL REFERENCES users(id),
    store_id TEXT NOT NULL REFERENCES stores(id),
    PRIMARY KEY (user_id, store_id)
);

CREATE TABLE IF NOT EXISTS stores (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    address          TEXT,
    max_capacity     REAL NOT NULL CHECK (max_capacity > 0),
    current_capacity REAL NOT NULL DEFAULT 0 CHECK (current_capacity >= 0),
    is_active        INTEGER NOT NULL DEFAULT 1,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
    id             TEXT PRIMARY KEY,
    sku            TEXT NOT NULL,
    name           TEXT NOT NULL,
    product_type   TEXT NOT NULL CHECK (product_type IN (
        'singleCard', 'boosterPack', 'collectorBooster', 'deck', 'deckBox',
        'dice', 'sleeves', 'playmat', 'binder', 'other')),
    unit_size      REAL NOT NULL CHECK (unit_size >= 0),
    card_set       TEXT,
    card_number    TEXT,
    card_rarity    TEXT,
    card_condition TEXT,
    card_finish    TEXT,
    image          BLOB,
    image_mime     TEXT,
    is_active      INTEGER NOT NULL DEFAULT 1,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_products_sku_active
    ON products(sku) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS inventory (
    id                  TEXT PRIMARY KEY,
    store_id            TEXT NOT NULL REFERENCES stores(id),
    product_id          TEXT REFERENCES products(id),
    quantity            INTEGER CHECK (quantity >= 0),
    location            TEXT CHECK (location IN ('floor', 'back')),
    min_stock_level     INTEGER NOT NULL DEFAULT 0,
    notes               TEXT,
    container_type      TEXT CHECK (container_type IN ('display-case', 'bulk-box', 'bulk-bin')),
    container_name      TEXT,
    container_unit_size REAL,
    is_active           INTEGER NOT NULL DEFAULT 1,
    created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK ((product_id IS NOT NULL AND container_type IS NULL)
        OR (product_id IS NULL AND container_type IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_inventory_store ON inventory(store_id);

CREATE TABLE IF NOT EXISTS container_items (
    inventory_id TEXT NOT NULL REFERENCES inventory(id),
    product_id   TEXT NOT NULL REFERENCES products(id),
    quantity     INTEGER NOT NULL CHECK (quantity >= 1),
    PRIMARY KEY (inventory_id, product_id)
);

CREATE TABLE IF NOT EXISTS transfer_requests (
    id             TEXT PRIMARY KEY,
    request_number TEXT NOT NULL UNIQUE,
    from_store_id  TEXT NOT NULL REFERENCES stores(id),
    to_store_id    TEXT NOT NULL REFERENCES stores(id),
    status         TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'requested', 'sent', 'complete', 'closed')),
    notes          TEXT,
    created_by     TEXT NOT NULL REFERENCES users(id),
    requested_by   TEXT,
    requested_at   DATETIME,
    sent_by        TEXT,
    sent_at        DATETIME,
    completed_by   TEXT,
    completed_at   DATETIME,
    closed_by      TEXT,
    closed_at      DATETIME,
    close_reason   TEXT,
    is_active      INTEGER NOT NULL DEFAULT 1,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (from_store_id <> to_store_id)
);

CREATE TABLE IF NOT EXISTS transfer_items (
    id                 TEXT PRIMARY KEY,
    request_id         TEXT NOT NULL REFERENCES transfer_requests(id),
    inventory_id       TEXT NOT NULL,
    product_id         TEXT,
    requested_quantity INTEGER NOT NULL CHECK (requested_quantity >= 1)
);

CREATE TABLE IF NOT EXISTS transfer_card_items (
    transfer_item_id TEXT NOT NULL REFERENCES transfer_items(id),
    product_id       TEXT NOT NULL,
    quantity         INTEGER NOT NULL CHECK (quantity >= 1),
    PRIMARY KEY (transfer_item_id, product_id)
);

CREATE TABLE IF NOT EXISTS transfer_status_history (
    request_id TEXT NOT NULL REFERENCES transfer_requests(id),
    status     TEXT NOT NULL,
    actor_id   TEXT NOT NULL,
    changed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transfer_history_request
    ON transfer_status_history(request_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`
