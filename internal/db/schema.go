package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- NODE TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS node SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON node TYPE string;
    DEFINE FIELD IF NOT EXISTS is_personal ON node TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS is_item ON node TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS author ON node TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS content_type ON node TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS source ON node TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS sequence_index ON node TYPE option<int>;
    -- Serialized JSON metadata; conversation imports carry thread_id here
    DEFINE FIELD IF NOT EXISTS tags ON node TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS content ON node TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON node TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS node_source ON node FIELDS source;
    DEFINE INDEX IF NOT EXISTS node_sequence ON node FIELDS sequence_index;

    -- ==========================================================================
    -- CONNECTS RELATION (typed edges between nodes)
    -- ==========================================================================
    -- Single relation table with edge_type field instead of dynamic table names
    DEFINE TABLE IF NOT EXISTS connects TYPE RELATION IN node OUT node SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS edge_type ON connects TYPE string;
    DEFINE FIELD IF NOT EXISTS weight ON connects TYPE option<float>;
    DEFINE FIELD IF NOT EXISTS is_personal ON connects TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS edge_source ON connects TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON connects TYPE datetime DEFAULT time::now();
    -- Unique constraint: [in, out, edge_type] prevents duplicate edges
    DEFINE FIELD IF NOT EXISTS unique_key ON connects VALUE <string>string::concat(<string>in, <string>out, edge_type);
    DEFINE INDEX IF NOT EXISTS unique_edge ON connects FIELDS unique_key UNIQUE;

    DEFINE INDEX IF NOT EXISTS connects_type ON connects FIELDS edge_type;

    -- ==========================================================================
    -- POSITION TABLE (user-saved node positions)
    -- ==========================================================================
    -- Keyed by node ID: position:<node_id>
    DEFINE TABLE IF NOT EXISTS position SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS x ON position TYPE float;
    DEFINE FIELD IF NOT EXISTS y ON position TYPE float;
    DEFINE FIELD IF NOT EXISTS updated ON position TYPE datetime DEFAULT time::now();
`
